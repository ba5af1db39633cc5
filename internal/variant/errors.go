package variant

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeDuplicateAttribute indicates two attributes share a name.
	ErrCodeDuplicateAttribute ErrorCode = "DUPLICATE_ATTRIBUTE"

	// ErrCodeDuplicateValue indicates an attribute lists the same value twice.
	ErrCodeDuplicateValue ErrorCode = "DUPLICATE_VALUE"

	// ErrCodeEmptyAttributeName indicates a blank attribute name.
	ErrCodeEmptyAttributeName ErrorCode = "EMPTY_ATTRIBUTE_NAME"

	// ErrCodeEmptyValue indicates a blank attribute value.
	ErrCodeEmptyValue ErrorCode = "EMPTY_VALUE"

	// ErrCodeTooManyCombinations indicates the product exceeds the configured limit.
	ErrCodeTooManyCombinations ErrorCode = "TOO_MANY_COMBINATIONS"

	// ErrCodeDuplicateCombination indicates two generated assignments share content.
	ErrCodeDuplicateCombination ErrorCode = "DUPLICATE_COMBINATION"

	// ErrCodeBarcodeSpaceExhausted indicates every barcode under the prefix is
	// already issued or reserved in the batch.
	ErrCodeBarcodeSpaceExhausted ErrorCode = "BARCODE_SPACE_EXHAUSTED"
)

// InvalidAttributeError rejects an attribute set (or generated assignment
// list) the engine refuses to expand, or a run it cannot finish because the
// barcode space is used up. Duplicates are never deduplicated.
type InvalidAttributeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Attribute is the offending attribute name, if any.
	Attribute string

	// Value is the offending value, if any.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvalidAttributeError) Error() string {
	switch {
	case e.Attribute != "" && e.Value != "":
		return fmt.Sprintf("%s: %s (attribute=%q, value=%q)", e.Code, e.Message, e.Attribute, e.Value)
	case e.Attribute != "":
		return fmt.Sprintf("%s: %s (attribute=%q)", e.Code, e.Message, e.Attribute)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// MalformedPatchError rejects a bulk patch before any record is touched.
type MalformedPatchError struct {
	// Field is the patch field that failed ("price" or "inventory").
	Field string

	// Value is the rejected value, rendered as text.
	Value string
}

// Error implements the error interface.
func (e *MalformedPatchError) Error() string {
	return fmt.Sprintf("MALFORMED_PATCH: %s must not be negative (got %s)", e.Field, e.Value)
}

// UnknownTargetError lists bulk-update target IDs absent from the list.
//
// ApplyBulkUpdate never returns it; unknown IDs are a no-op.
// BulkReport.UnknownErr exposes it for hosts that want to log it.
type UnknownTargetError struct {
	IDs []string
}

// Error implements the error interface.
func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("UNKNOWN_TARGET: %d target id(s) not in combination list: %s",
		len(e.IDs), strings.Join(e.IDs, ", "))
}

// IsInvalidAttribute returns true if err is an InvalidAttributeError.
// Uses errors.As to handle wrapped errors.
func IsInvalidAttribute(err error) bool {
	var ie *InvalidAttributeError
	return errors.As(err, &ie)
}

// HasCode returns true if err is an InvalidAttributeError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ie *InvalidAttributeError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// IsMalformedPatch returns true if err is a MalformedPatchError.
func IsMalformedPatch(err error) bool {
	var pe *MalformedPatchError
	return errors.As(err, &pe)
}

// IsUnknownTarget returns true if err is an UnknownTargetError.
func IsUnknownTarget(err error) bool {
	var ue *UnknownTargetError
	return errors.As(err, &ue)
}

func newDuplicateAttributeError(name string) *InvalidAttributeError {
	return &InvalidAttributeError{
		Code:      ErrCodeDuplicateAttribute,
		Attribute: name,
		Message:   "attribute name appears more than once",
	}
}

func newDuplicateValueError(name, value string) *InvalidAttributeError {
	return &InvalidAttributeError{
		Code:      ErrCodeDuplicateValue,
		Attribute: name,
		Value:     value,
		Message:   "value appears more than once in attribute",
	}
}

func newTooManyError(count, limit int) *InvalidAttributeError {
	return &InvalidAttributeError{
		Code:    ErrCodeTooManyCombinations,
		Message: fmt.Sprintf("attribute set expands to %d combinations (limit %d)", count, limit),
	}
}

func newBarcodeSpaceError(prefix string, a Assignment) *InvalidAttributeError {
	return &InvalidAttributeError{
		Code:    ErrCodeBarcodeSpaceExhausted,
		Value:   a.String(),
		Message: fmt.Sprintf("no free barcode left under prefix %q", prefix),
	}
}
