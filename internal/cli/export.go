package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackweight/pkg/graph"
	edgeio "github.com/matzehuels/stackweight/pkg/io"
)

// exportCommand creates the export command group.
func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a graph for other tools",
	}

	cmd.AddCommand(c.exportPairwiseCommand())

	return cmd
}

// exportPairwiseCommand creates the "export pairwise" subcommand.
func (c *CLI) exportPairwiseCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "pairwise [graph.json]",
		Short: "Write the static payloads of a pairwise-comparison frontend",
		Long: `Pairwise writes three JSON files into the output directory:

  get1stLevelCategoryList.json  seed ids in input order
  getProjectsForCategory.json   seed id to the targets of its links
  getProjectMetadata.json       node id to its fields, level omitted`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportPairwise(cmd.Context(), args[0], dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", ".", "output directory")

	return cmd
}

func runExportPairwise(ctx context.Context, input, dir string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger, input)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded graph", "nodes", g.NodeCount(), "links", g.LinkCount())

	p := edgeio.BuildPairwise(g)
	paths, err := edgeio.ExportPairwise(p, dir)
	if err != nil {
		return err
	}

	prog.done("Exported", "dir", dir, "projects", len(p.Metadata))
	printSuccess("Exported %d categories, %d projects", len(p.Categories), len(p.Metadata))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}
