package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/variant"
)

// GeneratedAssignment is one row of generate output.
type GeneratedAssignment struct {
	Attributes variant.Assignment `json:"attributes"`
	SKU        string             `json:"sku"`
}

// GenerateResult is the generate command payload.
type GenerateResult struct {
	Count       int                   `json:"count"`
	Assignments []GeneratedAssignment `json:"assignments"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <attributes-file>",
		Short: "Expand an attribute set into its combinations",
		Long: `Expand an attribute set into the Cartesian product of its values.

Prints each assignment with the SKU a new combination would receive, in
generation order (the last attribute varies fastest).

Examples:
  variants generate tee.cue
  variants generate tee.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGenerate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := opts.logger()

	attrs, err := catalog.LoadAttributes(path)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("Loaded %d attribute(s) from %s", len(attrs), path)

	generated, err := variant.GenerateLimit(attrs, opts.config().Generate.MaxCombinations)
	if err != nil {
		return formatter.Fail(err)
	}
	logger.Debug("attribute set expanded", zap.String("path", path), zap.Int("count", len(generated)))

	result := GenerateResult{
		Count:       len(generated),
		Assignments: make([]GeneratedAssignment, len(generated)),
	}
	for i, a := range generated {
		result.Assignments[i] = GeneratedAssignment{Attributes: a, SKU: variant.SynthesizeSKU(a)}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	for i, a := range result.Assignments {
		fmt.Fprintf(w, "%4d  %-20s  %s\n", i+1, a.SKU, a.Attributes)
	}
	fmt.Fprintf(w, "%d combination(s)\n", result.Count)
	return nil
}

// newFormatter builds the formatter for a command's streams.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
