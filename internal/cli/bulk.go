package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/variant"
)

// BulkOptions holds flags for the bulk command.
type BulkOptions struct {
	*RootOptions
	IDs       []string
	Price     string
	Inventory int64
	Out       string
}

// BulkResult is the bulk command payload.
type BulkResult struct {
	Updated      int                   `json:"updated"`
	Unknown      []string              `json:"unknown,omitempty"`
	Out          string                `json:"out,omitempty"`
	Combinations []variant.Combination `json:"combinations,omitempty"`
}

// NewBulkCommand creates the bulk command.
func NewBulkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BulkOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bulk <combinations-file>",
		Short: "Apply one price and/or inventory to selected combinations",
		Long: `Apply a uniform price and/or inventory to the combinations named by --ids.

A value of 0 leaves that field unchanged, so bulk editing cannot set a price
or inventory of exactly 0. Negative values reject the whole edit. IDs not in
the list are reported and otherwise ignored.

The list is written as for reconcile: stdout unless --out is given.

Examples:
  variants bulk combos.json --ids var-1,var-2 --price 19.99 --out combos.json
  variants bulk combos.json --ids var-3 --inventory 40`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.IDs, "ids", nil, "comma-separated combination IDs")
	cmd.Flags().StringVar(&opts.Price, "price", "", "new price (decimal)")
	cmd.Flags().Int64Var(&opts.Inventory, "inventory", 0, "new inventory count")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runBulk(opts *BulkOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.logger()

	if len(opts.IDs) == 0 {
		return formatter.Usage("--ids is required")
	}

	var patch variant.Patch
	if opts.Price != "" {
		price, err := decimal.NewFromString(opts.Price)
		if err != nil {
			return formatter.Usage(fmt.Sprintf("invalid --price %q", opts.Price))
		}
		patch.Price = &price
	}
	if cmd.Flags().Changed("inventory") {
		inventory := opts.Inventory
		patch.Inventory = &inventory
	}
	if patch.Price == nil && patch.Inventory == nil {
		return formatter.Usage("one of --price or --inventory is required")
	}

	combos, err := catalog.LoadCombinations(path)
	if err != nil {
		return formatter.Fail(err)
	}

	report, err := variant.ApplyBulkUpdateReport(combos, opts.IDs, patch)
	if err != nil {
		return formatter.Fail(err)
	}
	if unknown := report.UnknownErr(); unknown != nil {
		logger.Warn("bulk update skipped unknown targets", zap.Error(unknown))
	}
	if patch.Empty() {
		formatter.VerboseLog("Patch values are 0; no fields changed")
	}

	summary := fmt.Sprintf("updated %d combination(s)", report.Updated)
	if len(report.Unknown) > 0 {
		summary += fmt.Sprintf(", %d unknown id(s): %s", len(report.Unknown), strings.Join(report.Unknown, ", "))
	}

	return emitCombinations(formatter, opts.Out, report.Combinations, func(inline []variant.Combination) any {
		return BulkResult{Updated: report.Updated, Unknown: report.Unknown, Out: opts.Out, Combinations: inline}
	}, summary)
}
