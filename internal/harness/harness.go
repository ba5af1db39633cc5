package harness

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roach88/variants/internal/testutil"
	"github.com/roach88/variants/internal/variant"
)

// Harness is the scenario execution engine.
// It runs steps with sequential IDs and a seeded barcode source.
type Harness struct {
	reconciler *variant.Reconciler
	attributes variant.AttributeSet
	current    []variant.Combination
	logger     *zap.Logger
}

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger *zap.Logger
}

// WithLogger routes engine and harness logs to l.
func WithLogger(l *zap.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each run starts from an empty combination list. A non-nil error means the
// scenario could not be executed at all; step and assertion failures are
// reported in Result.Errors.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = testutil.DefaultSeed
	}
	barcodes, err := variant.NewBarcodeSynthesizer(scenario.BarcodePrefix, testutil.SeededSource(seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create barcode synthesizer: %w", err)
	}

	h := &Harness{
		reconciler: variant.NewReconciler(
			variant.WithIDGenerator(testutil.NewSequenceIDGenerator("var")),
			variant.WithBarcodes(barcodes),
			variant.WithLogger(cfg.logger),
			variant.WithMaxCombinations(scenario.MaxCombinations),
		),
		attributes: scenario.Attributes,
		current:    []variant.Combination{},
		logger:     cfg.logger.With(zap.String("scenario", scenario.Name)),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i, step, result)
	}
	result.Final = h.current

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("steps", len(scenario.Steps)),
		zap.Int("final", len(result.Final)),
	)
	return result, nil
}

// executeStep runs one step, records its trace event and checks Expect.
func (h *Harness) executeStep(index int, step Step, result *Result) {
	var (
		event TraceEvent
		err   error
	)

	switch step.Action {
	case ActionRegenerate:
		event, err = h.regenerate(step)
	case ActionBulk:
		event, err = h.bulk(step)
	case ActionSearch:
		event = matchEvent(step.Action, variant.Search(h.current, step.Query))
	case ActionFilter:
		event = matchEvent(step.Action, variant.FilterByAttribute(h.current, step.Attribute, step.Value))
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	event.Action = step.Action
	if err != nil {
		event.Error = err.Error()
	}
	result.AddTrace(event)

	h.logger.Debug("step executed",
		zap.Int("index", index),
		zap.String("action", step.Action),
		zap.Int("count", event.Count),
		zap.Error(err),
	)

	for _, msg := range checkExpect(index, step.Expect, event, err) {
		result.AddError(msg)
	}
}

func (h *Harness) regenerate(step Step) (TraceEvent, error) {
	attrs := h.attributes
	if step.Attributes != nil {
		attrs = step.Attributes
	}

	out, report, err := h.reconciler.Regenerate(attrs, h.current)
	if err != nil {
		return TraceEvent{Count: len(h.current)}, err
	}

	h.attributes = attrs
	h.current = out
	return TraceEvent{
		Count:   len(out),
		Kept:    report.Kept,
		Created: report.Created,
		Dropped: report.Dropped,
	}, nil
}

func (h *Harness) bulk(step Step) (TraceEvent, error) {
	var patch variant.Patch
	if step.Price != "" {
		price, err := decimal.NewFromString(step.Price)
		if err != nil {
			return TraceEvent{Count: len(h.current)}, fmt.Errorf("invalid price %q: %w", step.Price, err)
		}
		patch.Price = &price
	}
	patch.Inventory = step.Inventory

	report, err := variant.ApplyBulkUpdateReport(h.current, step.IDs, patch)
	if err != nil {
		return TraceEvent{Count: len(h.current)}, err
	}
	if unknown := report.UnknownErr(); unknown != nil {
		h.logger.Info("bulk update skipped unknown targets", zap.Error(unknown))
	}

	h.current = report.Combinations
	return TraceEvent{
		Count:   len(report.Combinations),
		Updated: report.Updated,
		Unknown: report.Unknown,
	}, nil
}

func matchEvent(action string, matched []variant.Combination) TraceEvent {
	ids := make([]string, len(matched))
	for i, c := range matched {
		ids[i] = c.ID
	}
	return TraceEvent{Action: action, Count: len(matched), IDs: ids}
}

// checkExpect compares a step outcome to its expectation. A step without
// Expect must succeed.
func checkExpect(index int, expect *StepExpect, event TraceEvent, err error) []string {
	prefix := fmt.Sprintf("steps[%d] (%s)", index, event.Action)

	if expect == nil {
		if err != nil {
			return []string{fmt.Sprintf("%s: unexpected error: %v", prefix, err)}
		}
		return nil
	}

	var errs []string
	switch {
	case expect.Error != "" && err == nil:
		errs = append(errs, fmt.Sprintf("%s: expected error containing %q, got success", prefix, expect.Error))
	case expect.Error != "" && !strings.Contains(err.Error(), expect.Error):
		errs = append(errs, fmt.Sprintf("%s: expected error containing %q, got %v", prefix, expect.Error, err))
	case expect.Error == "" && err != nil:
		errs = append(errs, fmt.Sprintf("%s: unexpected error: %v", prefix, err))
	}

	check := func(name string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("%s: expected %s %d, got %d", prefix, name, *want, got))
		}
	}
	check("count", expect.Count, event.Count)
	check("kept", expect.Kept, event.Kept)
	check("created", expect.Created, event.Created)
	check("dropped", expect.Dropped, event.Dropped)
	check("updated", expect.Updated, event.Updated)
	return errs
}
