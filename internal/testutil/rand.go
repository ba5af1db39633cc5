package testutil

import "math/rand/v2"

// DefaultSeed seeds barcode sources in golden scenarios.
const DefaultSeed uint64 = 20240611

// SeededSource returns a deterministic random source for
// variant.NewBarcodeSynthesizer. The same seed always yields the same
// barcode sequence.
func SeededSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}
