package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/pkg/markdown"
)

// listCommand creates the list command for inspecting a document.
func (c *CLI) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the Mermaid blocks of a Markdown file",
		Long: `List every fenced Mermaid block in a Markdown file with its position,
detected diagram kind and opening line.`,
		Example: `  mdtouml list docs/architecture.md`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func runList(w io.Writer, path string) error {
	src, err := readSource(path)
	if err != nil {
		return err
	}

	blocks := markdown.Scan(src)
	if len(blocks) == 0 {
		newPrinter(w).info("No Mermaid blocks in %s", path)
		return nil
	}

	rows := make([][]string, len(blocks))
	for i, b := range blocks {
		rows[i] = blockRow(b)
	}
	fmt.Fprintln(w, blockTable(rows, nil, 0).Render())
	return nil
}
