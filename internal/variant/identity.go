package variant

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// skuSegmentLen is the number of characters kept from each name and value.
const skuSegmentLen = 3

// SynthesizeSKU derives the default SKU for an assignment.
//
// For each pair in assignment order it takes the first three characters of
// the attribute name and of the value, uppercased, joined by "-":
//
//	SynthesizeSKU(NewAssignment("Color", "Red", "Size", "Small")) // "COL-RED-SIZ-SMA"
//
// The result is a pure function of the assignment text. Characters are
// runes, so multi-byte values truncate cleanly. Leading and trailing spaces
// are trimmed before truncation, so " Red" and "Red" give the same segment.
func SynthesizeSKU(a Assignment) string {
	upper := cases.Upper(language.Und)
	segments := make([]string, 0, len(a)*2)
	for _, p := range a {
		segments = append(segments,
			upper.String(truncateRunes(strings.TrimSpace(p.Name), skuSegmentLen)),
			upper.String(truncateRunes(strings.TrimSpace(p.Value), skuSegmentLen)),
		)
	}
	return strings.Join(segments, "-")
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Barcode layout: EAN-13, prefix + random body + check digit.
const (
	barcodeLength = 13

	// DefaultBarcodePrefix is the GS1 restricted-circulation range used for
	// in-store codes.
	DefaultBarcodePrefix = "200"

	// barcodeAttempts bounds random redraws on an in-batch collision.
	barcodeAttempts = 16
)

// ValidateBarcodePrefix checks that prefix is 1 to 11 ASCII digits.
func ValidateBarcodePrefix(prefix string) error {
	if len(prefix) == 0 || len(prefix) > barcodeLength-2 {
		return fmt.Errorf("barcode prefix must be 1-%d digits, got %d", barcodeLength-2, len(prefix))
	}
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return fmt.Errorf("barcode prefix must be numeric, got %q", prefix)
		}
	}
	return nil
}

// BarcodeSynthesizer issues pseudo-random EAN-13 barcodes with a fixed prefix.
//
// Uniqueness is best-effort within one BarcodeBatch only; there is no
// global uniqueness guarantee. Barcodes are user-editable right after
// creation.
//
// Thread-safety: safe for concurrent use; the random source is mutex-guarded.
type BarcodeSynthesizer struct {
	prefix string

	mu  sync.Mutex
	rng *rand.Rand // nil uses the runtime-seeded global source
}

// NewBarcodeSynthesizer creates a synthesizer with the given prefix.
// A nil src draws from math/rand/v2's global, randomly seeded source;
// tests pass a seeded source for reproducible output.
func NewBarcodeSynthesizer(prefix string, src rand.Source) (*BarcodeSynthesizer, error) {
	if prefix == "" {
		prefix = DefaultBarcodePrefix
	}
	if err := ValidateBarcodePrefix(prefix); err != nil {
		return nil, err
	}
	s := &BarcodeSynthesizer{prefix: prefix}
	if src != nil {
		s.rng = rand.New(src)
	}
	return s, nil
}

// Prefix returns the fixed barcode prefix.
func (s *BarcodeSynthesizer) Prefix() string {
	return s.prefix
}

// draw produces one random barcode.
func (s *BarcodeSynthesizer) draw() string {
	bodyLen := barcodeLength - 1 - len(s.prefix)

	var b strings.Builder
	b.Grow(barcodeLength)
	b.WriteString(s.prefix)

	s.mu.Lock()
	for i := 0; i < bodyLen; i++ {
		if s.rng != nil {
			b.WriteByte(byte('0' + s.rng.IntN(10)))
		} else {
			b.WriteByte(byte('0' + rand.IntN(10)))
		}
	}
	s.mu.Unlock()

	payload := b.String()
	return payload + strconv.Itoa(checkDigit(payload))
}

// NewBatch starts a fresh collision-tracking batch.
func (s *BarcodeSynthesizer) NewBatch() *BarcodeBatch {
	return &BarcodeBatch{synth: s, issued: make(map[string]struct{})}
}

// checkDigit computes the EAN-13 check digit for a 12-digit payload.
// Weights alternate 1, 3 starting from the leftmost digit.
func checkDigit(payload string) int {
	sum := 0
	for i := 0; i < len(payload); i++ {
		d := int(payload[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

// ValidBarcode reports whether code is a 13-digit string with a correct
// EAN-13 check digit.
func ValidBarcode(code string) bool {
	if len(code) != barcodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return checkDigit(code[:barcodeLength-1]) == int(code[barcodeLength-1]-'0')
}

// BarcodeBatch tracks barcodes issued during one generation run so the same
// code is not handed to two different assignments in that run.
//
// A batch is owned by a single Reconcile call and is not safe for
// concurrent use.
type BarcodeBatch struct {
	synth  *BarcodeSynthesizer
	issued map[string]struct{}
}

// Reserve marks code as taken so Barcode will not issue it.
func (b *BarcodeBatch) Reserve(code string) {
	if code != "" {
		b.issued[code] = struct{}{}
	}
}

// Barcode issues a barcode for a new combination.
//
// The assignment does not feed the code; it names the record the code is
// issued for. On repeated collisions the body is bumped deterministically
// until a free code is found. When every body under the prefix is taken it
// returns an *InvalidAttributeError with ErrCodeBarcodeSpaceExhausted.
func (b *BarcodeBatch) Barcode(a Assignment) (string, error) {
	code := b.synth.draw()
	for i := 1; i < barcodeAttempts && b.taken(code); i++ {
		code = b.synth.draw()
	}
	for start := code; b.taken(code); {
		code = bump(code, len(b.synth.prefix))
		if code == start {
			return "", newBarcodeSpaceError(b.synth.prefix, a)
		}
	}
	b.issued[code] = struct{}{}
	return code, nil
}

func (b *BarcodeBatch) taken(code string) bool {
	_, ok := b.issued[code]
	return ok
}

// bump increments the body of code by one (wrapping) and recomputes the
// check digit. The prefix is left intact.
func bump(code string, prefixLen int) string {
	digits := []byte(code[:barcodeLength-1])
	for i := len(digits) - 1; i >= prefixLen; i-- {
		if digits[i] < '9' {
			digits[i]++
			break
		}
		digits[i] = '0'
	}
	payload := string(digits)
	return payload + strconv.Itoa(checkDigit(payload))
}

// defaultBarcodes backs SynthesizeBarcode and the default Reconciler.
var defaultBarcodes = func() *BarcodeSynthesizer {
	s, err := NewBarcodeSynthesizer(DefaultBarcodePrefix, nil)
	if err != nil {
		panic(err)
	}
	return s
}()

// SynthesizeBarcode issues a single barcode with the default prefix.
// Each call is its own batch; use a BarcodeBatch when issuing several codes
// that must not collide with each other.
func SynthesizeBarcode(a Assignment) string {
	// A fresh batch has nothing reserved, so it cannot run out.
	code, _ := defaultBarcodes.NewBatch().Barcode(a)
	return code
}
