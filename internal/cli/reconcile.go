package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/variant"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Existing string // current combination list
	Out      string // write the result here instead of stdout
}

// ReconcileResult is the reconcile command payload.
type ReconcileResult struct {
	Report       variant.Report        `json:"report"`
	Out          string                `json:"out,omitempty"`
	Combinations []variant.Combination `json:"combinations,omitempty"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <attributes-file>",
		Short: "Regenerate combinations and merge them with an edited list",
		Long: `Regenerate the combinations of an attribute set and reconcile them with an
existing combination list.

Combinations whose attribute values still exist keep every edit (ID, price,
SKU, barcode, inventory, images). New value pairings get defaults. Pairings
that no longer exist are dropped.

Without --out the new list is written to stdout as JSON and the summary to
stderr. With --out the list is written to the file (atomically) and the
summary to stdout.

Examples:
  variants reconcile tee.cue --existing combos.json --out combos.json
  variants reconcile tee.yaml > combos.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Existing, "existing", "", "existing combinations (JSON); missing file means none")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runReconcile(opts *ReconcileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	attrs, err := catalog.LoadAttributes(path)
	if err != nil {
		return formatter.Fail(err)
	}

	existing := []variant.Combination{}
	if opts.Existing != "" {
		existing, err = catalog.LoadCombinations(opts.Existing)
		if err != nil {
			return formatter.Fail(err)
		}
		formatter.VerboseLog("Loaded %d existing combination(s) from %s", len(existing), opts.Existing)
	}

	reconciler, err := newReconciler(opts.RootOptions)
	if err != nil {
		return formatter.Fail(err)
	}

	out, report, err := reconciler.Regenerate(attrs, existing)
	if err != nil {
		return formatter.Fail(err)
	}
	logger.Info("combinations regenerated",
		zap.String("attributes", path),
		zap.Int("kept", report.Kept),
		zap.Int("created", report.Created),
		zap.Int("dropped", report.Dropped),
	)

	return emitCombinations(formatter, opts.Out, out, func(inline []variant.Combination) any {
		return ReconcileResult{Report: report, Out: opts.Out, Combinations: inline}
	}, formatReport(report))
}

// newReconciler builds a Reconciler from the resolved configuration.
func newReconciler(opts *RootOptions) (*variant.Reconciler, error) {
	cfg := opts.config()
	barcodes, err := variant.NewBarcodeSynthesizer(cfg.Barcode.Prefix, nil)
	if err != nil {
		return nil, err
	}
	return variant.NewReconciler(
		variant.WithBarcodes(barcodes),
		variant.WithLogger(opts.logger()),
		variant.WithMaxCombinations(cfg.Generate.MaxCombinations),
	), nil
}

func formatReport(r variant.Report) string {
	s := fmt.Sprintf("kept %d, created %d, dropped %d", r.Kept, r.Created, r.Dropped)
	if len(r.DuplicateIDs) > 0 {
		s += fmt.Sprintf(" (%d duplicate(s) in existing list)", len(r.DuplicateIDs))
	}
	return s
}

// emitCombinations writes a result list the way reconcile and bulk share:
//   - --out set: save the file, print the summary (text) or payload (json)
//   - json: payload including the combinations on stdout
//   - text: combinations as JSON on stdout, summary on stderr
//
// payload builds the json response; inline is nil when the list went to a file.
func emitCombinations(f *OutputFormatter, out string, combos []variant.Combination, payload func(inline []variant.Combination) any, summary string) error {
	if out != "" {
		if err := catalog.SaveCombinations(out, combos); err != nil {
			return f.Fail(err)
		}
		if f.Format == "json" {
			return f.Success(payload(nil))
		}
		fmt.Fprintf(f.Writer, "%s\nwrote %d combination(s) to %s\n", summary, len(combos), out)
		return nil
	}

	if f.Format == "json" {
		return f.Success(payload(combos))
	}
	if err := catalog.WriteCombinations(f.Writer, combos); err != nil {
		return f.Fail(err)
	}
	fmt.Fprintln(f.GetErrWriter(), summary)
	return nil
}
