package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/pipeline"
)

// convertOptions holds flags for the convert command.
type convertOptions struct {
	kind    string
	server  string
	showURL bool
}

// convertCommand creates the convert command, the offline half of generate.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Print the PlantUML text for a Mermaid diagram without rendering it",
		Long: `Extract the first Mermaid diagram of the given type from a Markdown file and
print its PlantUML translation to stdout. No network access takes place.`,
		Example: `  mdtouml convert docs/auth.md
  mdtouml convert docs/build.md -t flowchart --url`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "type", "t", diagram.DefaultKind.String(), "diagram type: "+diagram.KindNames())
	cmd.Flags().StringVar(&opts.server, "server", c.Config.Server, "PlantUML server base URL used for --url")
	cmd.Flags().BoolVar(&opts.showURL, "url", false, "also print the image URL")
	_ = cmd.RegisterFlagCompletionFunc("type", completeKinds)

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, w io.Writer, path string, opts convertOptions) error {
	kind, err := diagram.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	conv, err := c.newRunner(logger, 0).Convert(ctx, pipeline.Options{
		Source: path,
		Kind:   kind,
		Server: opts.server,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, conv.PlantUML)
	if opts.showURL {
		fmt.Fprintln(w)
		fmt.Fprintln(w, conv.URL)
	}
	return nil
}
