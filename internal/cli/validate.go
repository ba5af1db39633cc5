package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/variants/internal/catalog"
	"github.com/roach88/variants/internal/variant"
)

// ValidationError describes why an attribute file was rejected.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool              `json:"valid"`
	Attributes   int               `json:"attributes,omitempty"`
	Combinations int               `json:"combinations,omitempty"`
	Errors       []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <attributes-file>",
		Short: "Check an attribute set without generating combinations",
		Long: `Check an attribute file (.cue, .yaml, .yml or .json) against the attribute
schema and the engine's rules: no blank or duplicate attribute names, no
blank or duplicate values, and a combination count within the configured
limit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	attrs, err := catalog.LoadAttributes(path)
	if err == nil {
		err = checkLimit(attrs, opts.config().Generate.MaxCombinations)
	}
	if err != nil {
		return outputValidationError(formatter, path, err)
	}

	for _, a := range attrs {
		formatter.VerboseLog("%s: %d value(s)", a.Name, len(a.Values))
	}

	result := ValidationResult{
		Valid:        true,
		Attributes:   len(attrs),
		Combinations: variant.Count(attrs),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Attribute set valid: %d attribute(s), %d combination(s)\n",
		result.Attributes, result.Combinations)
	return nil
}

// checkLimit rejects sets whose product exceeds limit. A limit <= 0 disables
// the check.
func checkLimit(attrs variant.AttributeSet, limit int) error {
	if limit <= 0 {
		return nil
	}
	_, err := variant.GenerateLimit(attrs, limit)
	return err
}

// outputValidationError reports a rejected file. Unreadable or unsupported
// files are command errors; everything else is a validation failure.
func outputValidationError(formatter *OutputFormatter, path string, err error) error {
	code, exit := classify(err)

	ve := ValidationError{Code: code, Message: err.Error(), File: path}
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		ve.Message = loadErr.Message
		if loadErr.Pos.IsValid() {
			ve.Line = loadErr.Pos.Line()
		}
	}

	if formatter.Format == "json" {
		if encErr := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: []ValidationError{ve}},
			Error:  &CLIError{Code: ve.Code, Message: ve.Message},
		}); encErr != nil {
			return encErr
		}
		return WrapExitError(exit, code, err)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	if ve.Line > 0 {
		fmt.Fprintf(formatter.Writer, "%s:%d\n", path, ve.Line)
	}
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", ve.Code, ve.Message)

	return WrapExitError(exit, code, err)
}
