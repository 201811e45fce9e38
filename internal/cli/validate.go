package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackweight/pkg/errors"
	edgeio "github.com/matzehuels/stackweight/pkg/io"
	"github.com/matzehuels/stackweight/pkg/weight"
)

// errOverBudget is returned by validate --strict when a parent exceeds its
// budget.
var errOverBudget = errors.New(errors.ErrCodeOverBudget, "weights exceed the per-parent budget")

type validateOpts struct {
	epsilon float64
	format  string
	strict  bool
}

// validateCommand creates the validate command, which audits any weighted
// edge file.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate [weights.csv]",
		Short: "Check that no parent hands out more than 1.0",
		Long: `Validate reads a weighted edge table (CSV with repo,parent,weight columns,
or the JSON array written by weigh --format json), sums the weight every
parent hands out and flags parents whose total exceeds 1.0.

Violations are reported but do not fail the command unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.epsilon, "epsilon", 0, "tolerance above 1.0 before a parent is flagged (default 1e-9)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: csv, json (default from extension)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when a parent exceeds its budget")

	return cmd
}

func (c *CLI) runValidate(ctx context.Context, path string, opts *validateOpts) error {
	logger := loggerFromContext(ctx)

	edges, err := readEdges(path, opts.format)
	if err != nil {
		return err
	}
	logger.Debug("read edges", "path", path, "count", len(edges))

	report := weight.Validate(edges, pickFloat(opts.epsilon, c.config.Epsilon))
	printReport(c.Out, report)

	if opts.strict && !report.OK() {
		return errOverBudget
	}
	return nil
}

// readEdges loads a weight table, honoring an explicit format over the file
// extension.
func readEdges(path, format string) ([]weight.Edge, error) {
	if format == "" {
		return edgeio.Import(path)
	}
	if err := edgeio.ValidateFormat(format); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return edgeio.Decode(format, f)
}
