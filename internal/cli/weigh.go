package cli

import (
	"context"

	"github.com/spf13/cobra"

	edgeio "github.com/matzehuels/stackweight/pkg/io"
)

// weighOpts holds the command-line flags for the weigh command.
type weighOpts struct {
	weightFlags
	output string // output file; empty or "-" writes to stdout
	format string // csv or json; derived from output when empty
}

// weighCommand creates the weigh command, which turns a node-link graph into
// a weighted edge table.
func (c *CLI) weighCommand() *cobra.Command {
	var opts weighOpts

	cmd := &cobra.Command{
		Use:   "weigh [graph.json]",
		Short: "Assign weights to a dependency graph",
		Long: `Weigh reads a node-link JSON graph whose nodes carry level 1 (seed
projects) or level 2 (dependencies) and writes one repo,parent,weight row per
edge, rooted at the sentinel node.

Policies:
  even      every seed gets an equal share of the root, every unique child an
            equal share of its seed
  half      0.5 is split across all seeds and 0.5 across all seed links
  selfloop  like even, but a seed with children keeps --retain of its budget
            through a self-loop`,
		Example: `  stackweight weigh graph.json -p selfloop -o weights.csv
  stackweight weigh graph.json --format json | jq .`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWeigh(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: csv (default), json")

	return cmd
}

func (c *CLI) runWeigh(ctx context.Context, input string, opts *weighOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger, input)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	toStdout := opts.output == "" || opts.output == "-"
	popts := c.weightOptions(&opts.weightFlags)
	popts.Input = input
	popts.Refresh = opts.refresh
	popts.Epsilon = c.config.Epsilon
	popts.Format = pick(opts.format, c.config.Format)
	if popts.Format == "" && !toStdout {
		popts.Format = edgeio.FormatFromPath(opts.output)
	}

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	if toStdout {
		_, err := c.Out.Write(result.Output)
		return err
	}
	if err := edgeio.WriteFileAtomic(opts.output, result.Output); err != nil {
		return err
	}

	prog.done("Weighted", "policy", result.Policy, "edges", result.Stats.EdgeCount, "cached", result.CacheHit)
	printSuccess("Weighted %s with policy %s", input, result.Policy)
	printStats(result.Stats.SeedCount, result.Stats.EdgeCount, result.CacheHit)
	printFile(opts.output)
	if !result.Report.OK() {
		for _, v := range result.Report.Violations {
			printWarning("%s hands out %.6f", v.Parent, v.Total)
		}
	}
	printNextStep("Check budgets", "stackweight validate "+opts.output)
	return nil
}
