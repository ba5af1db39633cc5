package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/variants/internal/variant"
)

// combinationDoc is the wrapped form of a combination file.
type combinationDoc struct {
	Combinations []variant.Combination `json:"combinations"`
}

// LoadCombinations reads a combination list. A missing path yields an empty
// list so the first regeneration can start from nothing.
func LoadCombinations(path string) ([]variant.Combination, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []variant.Combination{}, nil
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cannot read %s: %v", path, err), Err: err}
	}
	return DecodeCombinations(src)
}

// DecodeCombinations accepts either a bare JSON array or an object with a
// "combinations" array.
func DecodeCombinations(src []byte) ([]variant.Combination, error) {
	trimmed := bytes.TrimSpace(src)
	if len(trimmed) == 0 {
		return []variant.Combination{}, nil
	}

	var combos []variant.Combination
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &combos); err != nil {
			return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("parse combinations: %v", err), Err: err}
		}
	} else {
		var doc combinationDoc
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("parse combinations: %v", err), Err: err}
		}
		combos = doc.Combinations
	}

	for i, c := range combos {
		if err := checkCombination(c); err != nil {
			return nil, &LoadError{Code: ErrCodeCombination, Message: fmt.Sprintf("combination %d (%s): %v", i, c.ID, err)}
		}
	}
	if combos == nil {
		combos = []variant.Combination{}
	}
	return combos, nil
}

func checkCombination(c variant.Combination) error {
	switch {
	case c.ID == "":
		return errors.New("missing id")
	case c.Price.IsNegative():
		return errors.New("price must not be negative")
	case c.ComparePrice.IsNegative():
		return errors.New("compare_price must not be negative")
	case c.Weight.IsNegative():
		return errors.New("weight must not be negative")
	case c.Inventory < 0:
		return errors.New("inventory must not be negative")
	}
	return nil
}

// WriteCombinations encodes combos as an indented JSON array.
func WriteCombinations(w io.Writer, combos []variant.Combination) error {
	if combos == nil {
		combos = []variant.Combination{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(combos); err != nil {
		return &LoadError{Code: ErrCodeWrite, Message: fmt.Sprintf("encode combinations: %v", err), Err: err}
	}
	return nil
}

// SaveCombinations writes combos to path through a temp file in the same
// directory, then renames it into place.
func SaveCombinations(path string, combos []variant.Combination) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".combinations-*.json")
	if err != nil {
		return &LoadError{Code: ErrCodeWrite, Message: fmt.Sprintf("create temp file: %v", err), Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := WriteCombinations(tmp, combos); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return &LoadError{Code: ErrCodeWrite, Message: fmt.Sprintf("close temp file: %v", err), Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &LoadError{Code: ErrCodeWrite, Message: fmt.Sprintf("rename into place: %v", err), Err: err}
	}
	return nil
}
