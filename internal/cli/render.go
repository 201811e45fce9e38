package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	edgeio "github.com/matzehuels/stackweight/pkg/io"
	"github.com/matzehuels/stackweight/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	weightFlags
	output string // output file; derived from the input name when empty
	format string // dot, svg, png or pdf
	layout string // TB or LR
	links  bool   // link URL-shaped node ids
}

// renderCommand creates the render command, which draws the weighted graph.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render the weighted graph as a diagram",
		Long: `Render weighs the graph and draws it with Graphviz: the root sentinel on
top, seeds below it, dependencies at the bottom, every edge labeled with its
weight and drawn thicker the more weight it carries.

PNG and PDF output need rsvg-convert on PATH.`,
		Example: `  stackweight render graph.json -p half -o weights.svg
  stackweight render graph.json -f dot --layout lr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromExt(opts.output)
			}
			if err := nodelink.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), dot, png, pdf")
	cmd.Flags().StringVar(&opts.layout, "layout", nodelink.LayoutTB, "rank direction: TB, LR")
	cmd.Flags().BoolVar(&opts.links, "links", false, "make repository URLs clickable")

	return cmd
}

// formatFromExt returns the diagram format named by path's extension, or
// svg when it names none.
func formatFromExt(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range nodelink.Formats {
		if f == ext {
			return f
		}
	}
	return nodelink.FormatSVG
}

// outputPath replaces input's extension with format's.
func outputPath(input, format string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger, input)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.weightOptions(&opts.weightFlags)
	popts.Input = input
	popts.Refresh = opts.refresh
	popts.Format = edgeio.FormatJSON
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	data, hit, err := runner.RenderWithCacheInfo(ctx, result.Edges, opts.format, nodelink.Options{
		Root:   popts.Root,
		Layout: strings.ToUpper(opts.layout),
		Links:  opts.links,
	})
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = outputPath(input, opts.format)
	}
	if err := edgeio.WriteFileAtomic(output, data); err != nil {
		return err
	}

	prog.done("Rendered", "format", opts.format, "bytes", len(data))
	printSuccess("Rendered %s with policy %s", input, result.Policy)
	printStats(result.Stats.SeedCount, result.Stats.EdgeCount, result.CacheHit && hit)
	printFile(output)
	return nil
}
