package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/typica/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Issues []schema.Issue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <payload|->",
		Short: "Validate a filter payload without compiling it",
		Long: `Validate a JSON or YAML filter payload.

Checks the payload shape, every clause (operator and value kind), the
timeframe, timezone and formatDate, and reports all issues found.

Exit codes:
  0 - Payload is valid
  1 - Payload has issues
  2 - Payload could not be read`,
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
	formatter := opts.formatter(cmd)

	data, err := ReadInput(path, cmd.InOrStdin())
	if err != nil {
		return fail(formatter, err)
	}

	result := Validate(data)
	formatter.VerboseLog("Validated %s: %d issue(s)", path, len(result.Issues))

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeValidation(formatter.Writer, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("payload has %d issue(s)", len(result.Issues)))
	}
	return nil
}

// Validate decodes data and runs every payload check, collecting the
// issues of the first failing stage (shape, then clauses, then timeframe).
func Validate(data []byte) ValidationResult {
	p, err := schema.Decode(data)
	if err == nil {
		if errs := p.Validate(); len(errs) > 0 {
			issues := make([]schema.Issue, len(errs))
			for i, e := range errs {
				issues[i] = schema.Issue{Path: e.Field, Message: e.Message, Code: e.Code}
			}
			return ValidationResult{Issues: issues}
		}
		_, err = p.Query()
	}
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var payloadErr *schema.PayloadError
	if errors.As(err, &payloadErr) {
		return ValidationResult{Issues: payloadErr.Issues}
	}
	code, message, _, _ := describeError(err)
	return ValidationResult{Issues: []schema.Issue{{Message: message, Code: code}}}
}

func writeValidation(w io.Writer, r ValidationResult) {
	if r.Valid {
		fmt.Fprintln(w, "✓ Payload is valid")
		return
	}
	fmt.Fprintf(w, "✗ Payload has %d issue(s):\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
}
