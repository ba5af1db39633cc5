package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/variant"
)

// QueryResult is the search and filter payload.
type QueryResult struct {
	Query        variant.Query         `json:"query"`
	Count        int                   `json:"count"`
	Combinations []variant.Combination `json:"combinations"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "search <combinations-file>",
		Short: "Find combinations by SKU or attribute value",
		Long: `Find combinations whose SKU or any attribute value contains the query,
ignoring case. An empty query lists everything.

Examples:
  variants search combos.json --query red
  variants search combos.json -q "COL-BLU" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], variant.Query{Text: query}, cmd)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "text to search for")
	return cmd
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	var q variant.Query

	cmd := &cobra.Command{
		Use:   "filter <combinations-file>",
		Short: "Keep combinations with one attribute value",
		Long: `Keep combinations whose value for --attribute equals --value exactly.

"all" or an empty string for either flag disables the filter. An attribute
no combination has yields an empty result. --query narrows the result by
text as the search command does.

Examples:
  variants filter combos.json --attribute Size --value M
  variants filter combos.json --attribute Color --value all`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], q, cmd)
		},
	}

	cmd.Flags().StringVarP(&q.Attribute, "attribute", "a", variant.AllAttributes, "attribute name")
	cmd.Flags().StringVar(&q.Value, "value", variant.AllValues, "attribute value")
	cmd.Flags().StringVarP(&q.Text, "query", "q", "", "optional text to search for")
	return cmd
}

func runQuery(opts *RootOptions, path string, q variant.Query, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	combos, err := catalog.LoadCombinations(path)
	if err != nil {
		return formatter.Fail(err)
	}

	if q.Attribute != "" && q.Attribute != variant.AllAttributes {
		values := variant.Values(combos, q.Attribute)
		formatter.VerboseLog("Values of %s: %s", q.Attribute, strings.Join(values, ", "))
	}

	matched := q.Apply(combos)
	result := QueryResult{Query: q, Count: len(matched), Combinations: matched}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(matched) == 0 {
		fmt.Fprintln(w, "No combinations match.")
		return nil
	}
	printCombinations(w, matched)
	fmt.Fprintf(w, "%d of %d combination(s)\n", len(matched), len(combos))
	return nil
}
