// Package catalog reads and writes the files the variants CLI operates on:
// attribute sets (CUE, YAML or JSON) and combination lists (JSON).
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/variants/internal/variant"
)

//go:embed schema.cue
var schemaSource string

// Error codes for load failures.
const (
	ErrCodeNotFound    = "E001" // File missing or unreadable
	ErrCodeFormat      = "E002" // Unsupported file extension
	ErrCodeSyntax      = "E003" // File does not parse
	ErrCodeSchema      = "E004" // Document does not match the attribute schema
	ErrCodeAttributes  = "E005" // Attribute set rejected by the engine
	ErrCodeCombination = "E006" // Combination list malformed
	ErrCodeWrite       = "E007" // Output could not be written
)

// LoadError reports a file that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError returns true if err is a LoadError with the given code.
func IsLoadError(err error, code string) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// attributeDoc is the on-disk shape of an attribute set.
type attributeDoc struct {
	Attributes variant.AttributeSet `json:"attributes" yaml:"attributes"`
}

// LoadAttributes reads an attribute set, choosing the decoder by extension.
// The result has passed variant.Validate.
func LoadAttributes(path string) (variant.AttributeSet, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cannot read %s: %v", path, err), Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return DecodeAttributesCUE(filepath.Base(path), src)
	case ".yaml", ".yml":
		return DecodeAttributesYAML(src)
	case ".json":
		return DecodeAttributesJSON(src)
	default:
		return nil, &LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported attribute file %q (want .cue, .yaml, .yml or .json)", path),
		}
	}
}

// DecodeAttributesCUE evaluates src against the embedded schema.
func DecodeAttributesCUE(filename string, src []byte) (variant.AttributeSet, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}
	def := schema.LookupPath(cue.ParsePath("#AttributeSet"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(ErrCodeSyntax, err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	var doc attributeDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}
	return checkAttributes(doc.Attributes)
}

// DecodeAttributesYAML decodes a YAML attribute document. Unknown keys are
// rejected.
func DecodeAttributesYAML(src []byte) (variant.AttributeSet, error) {
	var doc attributeDoc
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("parse YAML: %v", err), Err: err}
	}
	return checkAttributes(doc.Attributes)
}

// DecodeAttributesJSON decodes a JSON attribute document. Unknown keys are
// rejected.
func DecodeAttributesJSON(src []byte) (variant.AttributeSet, error) {
	var doc attributeDoc
	decoder := json.NewDecoder(bytes.NewReader(src))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("parse JSON: %v", err), Err: err}
	}
	return checkAttributes(doc.Attributes)
}

func checkAttributes(attrs variant.AttributeSet) (variant.AttributeSet, error) {
	if err := variant.Validate(attrs); err != nil {
		return nil, &LoadError{Code: ErrCodeAttributes, Message: err.Error(), Err: err}
	}
	return attrs, nil
}

// formatCUEError converts the first CUE error into a positioned LoadError.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error(), Err: err}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
