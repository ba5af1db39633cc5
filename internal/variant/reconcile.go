package variant

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconciler merges freshly generated assignments into an edited
// combination list.
//
// Thread-safety: a Reconciler holds no per-call state and may be shared.
// Each Reconcile call owns its own BarcodeBatch.
type Reconciler struct {
	ids             IDGenerator
	barcodes        *BarcodeSynthesizer
	logger          *zap.Logger
	maxCombinations int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithIDGenerator sets the source of new combination IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Reconciler) { r.ids = g }
}

// WithBarcodes sets the barcode synthesizer for new combinations.
func WithBarcodes(s *BarcodeSynthesizer) Option {
	return func(r *Reconciler) { r.barcodes = s }
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithMaxCombinations bounds Regenerate's product size. 0 means unlimited.
func WithMaxCombinations(n int) Option {
	return func(r *Reconciler) { r.maxCombinations = n }
}

// NewReconciler creates a Reconciler. Without options it issues UUIDv7 IDs
// and default-prefix barcodes and logs nothing.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{
		ids:      UUIDv7Generator{},
		barcodes: defaultBarcodes,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report summarizes one reconciliation.
type Report struct {
	Kept    int `json:"kept"`
	Created int `json:"created"`
	Dropped int `json:"dropped"`

	// DroppedIDs lists existing combinations that were not emitted, in
	// existing-list order.
	DroppedIDs []string `json:"dropped_ids,omitempty"`

	// DuplicateIDs lists existing combinations dropped because an earlier
	// record already had the same assignment content.
	DuplicateIDs []string `json:"duplicate_ids,omitempty"`
}

// Reconcile merges generated against existing.
//
// For each generated assignment, in order:
//   - an existing record with equal content is emitted unchanged
//   - otherwise a new defaulted record is created
//
// Existing records matching no generated assignment are dropped. Output
// order follows generated, so reconciling the same generated list twice
// yields identical results.
func (r *Reconciler) Reconcile(generated []Assignment, existing []Combination) ([]Combination, error) {
	out, _, err := r.ReconcileWithReport(generated, existing)
	return out, err
}

// ReconcileWithReport is Reconcile plus a kept/created/dropped summary.
func (r *Reconciler) ReconcileWithReport(generated []Assignment, existing []Combination) ([]Combination, Report, error) {
	var report Report

	// Reject duplicate generated content before anything is built.
	keys := make([]string, len(generated))
	seen := make(map[string]struct{}, len(generated))
	for i, a := range generated {
		k := a.Key()
		if _, dup := seen[k]; dup {
			return nil, Report{}, &InvalidAttributeError{
				Code:    ErrCodeDuplicateCombination,
				Value:   a.String(),
				Message: "generated assignments contain duplicate content",
			}
		}
		seen[k] = struct{}{}
		keys[i] = k
	}

	byKey, dupes := index(existing)
	for _, i := range dupes {
		report.DuplicateIDs = append(report.DuplicateIDs, existing[i].ID)
	}
	if len(dupes) > 0 {
		r.logger.Warn("existing combinations contain duplicate assignments; keeping first occurrence",
			zap.Strings("duplicate_ids", report.DuplicateIDs))
	}

	// Kept records keep their barcodes; new codes must not collide with them.
	batch := r.barcodes.NewBatch()
	matched := make(map[int]struct{}, len(generated))
	for _, k := range keys {
		if i, ok := byKey[k]; ok {
			matched[i] = struct{}{}
			batch.Reserve(existing[i].Barcode)
		}
	}

	out := make([]Combination, 0, len(generated))
	for n, a := range generated {
		if i, ok := byKey[keys[n]]; ok {
			out = append(out, existing[i].Clone())
			report.Kept++
			continue
		}
		c, err := r.newCombination(a, batch)
		if err != nil {
			r.logger.Debug("reconciliation rejected", zap.Error(err))
			return nil, Report{}, err
		}
		out = append(out, c)
		report.Created++
	}

	for i, c := range existing {
		if _, ok := matched[i]; !ok {
			report.DroppedIDs = append(report.DroppedIDs, c.ID)
		}
	}
	report.Dropped = len(report.DroppedIDs)

	r.logger.Debug("combinations reconciled",
		zap.Int("generated", len(generated)),
		zap.Int("existing", len(existing)),
		zap.Int("kept", report.Kept),
		zap.Int("created", report.Created),
		zap.Int("dropped", report.Dropped),
	)

	return out, report, nil
}

// Regenerate expands attrs and reconciles the result against existing.
// Either step failing rejects the whole run; existing is never modified.
func (r *Reconciler) Regenerate(attrs AttributeSet, existing []Combination) ([]Combination, Report, error) {
	generated, err := GenerateLimit(attrs, r.maxCombinations)
	if err != nil {
		r.logger.Debug("regeneration rejected", zap.Error(err))
		return nil, Report{}, err
	}
	return r.ReconcileWithReport(generated, existing)
}

// newCombination builds the defaulted record for a first-seen assignment.
func (r *Reconciler) newCombination(a Assignment, batch *BarcodeBatch) (Combination, error) {
	barcode, err := batch.Barcode(a)
	if err != nil {
		return Combination{}, err
	}
	return Combination{
		ID:           r.ids.Generate(),
		Attributes:   a.Clone(),
		Price:        decimal.Zero,
		ComparePrice: decimal.Zero,
		SKU:          SynthesizeSKU(a),
		Barcode:      barcode,
		Weight:       decimal.Zero,
		IsActive:     true,
		Inventory:    0,
		Images:       []string{},
	}, nil
}

var defaultReconciler = NewReconciler()

// Reconcile merges generated against existing with the default Reconciler
// (UUIDv7 IDs, default-prefix barcodes).
func Reconcile(generated []Assignment, existing []Combination) ([]Combination, error) {
	return defaultReconciler.Reconcile(generated, existing)
}

// Regenerate expands attrs and reconciles with the default Reconciler.
func Regenerate(attrs AttributeSet, existing []Combination) ([]Combination, error) {
	out, _, err := defaultReconciler.Regenerate(attrs, existing)
	return out, err
}
