package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/pipeline"
)

// renderOptions holds flags for the render command.
type renderOptions struct {
	output  string
	name    string
	server  string
	timeout time.Duration
	print   string
}

// renderCommand creates the render command for hand-written PlantUML files.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <file.puml>",
		Short: "Render a PlantUML file on a PlantUML server",
		Long: `Render a PlantUML file as it is, without any Mermaid conversion, and save the
PNG as <output>/<YYYYMMDD_HHMM>_<name>.png. A file without @startuml is
wrapped in @startuml/@enduml first. The base name defaults to the file name
without its extension. No viewer is written.`,
		Example: `  mdtouml render docs/architecture.puml
  mdtouml render sketch.txt -n sketch --server https://plantuml.internal --print json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", c.Config.Output, "output directory")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "base name of the image (default: file name)")
	cmd.Flags().StringVar(&opts.server, "server", c.Config.Server, "PlantUML server base URL")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", c.Config.Timeout, "HTTP timeout (0 = none)")
	cmd.Flags().StringVar(&opts.print, "print", "", "print the result record instead of status lines: json or yaml")
	_ = cmd.RegisterFlagCompletionFunc("print", cobra.FixedCompletions([]string{printJSON, printYAML}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, path string, opts renderOptions) error {
	if opts.print != "" && opts.print != printJSON && opts.print != printYAML {
		return errors.New(errors.ErrCodeInvalidInput, "invalid --print %q (must be json or yaml)", opts.print)
	}
	name := opts.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	logger := loggerFromContext(ctx)
	quiet := opts.print != ""
	var spinner *Spinner
	if !quiet {
		spinner = newSpinner(ctx, os.Stderr, "Starting...")
		spinner.Start()
	}
	installHooks(logger, spinner)

	result, err := c.newRunner(logger, opts.timeout).Render(ctx, pipeline.Options{
		Source: path,
		Output: opts.output,
		Name:   name,
		Server: opts.server,
		Logger: logger,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if quiet {
		return writeResult(w, result, opts.print)
	}
	p := newPrinter(w)
	p.success("Rendered %s", path)
	p.file(result.LocalPath)
	p.field("Image", fmt.Sprintf("%s, %d bytes", result.Format, result.Bytes))
	p.link(truncate(result.URL, 96))
	return nil
}
