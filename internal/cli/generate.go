package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/markdown"
	"github.com/matzehuels/mdtouml/pkg/pipeline"
)

// Result print formats.
const (
	printJSON = "json"
	printYAML = "yaml"
)

// generateOptions holds flags for the generate command.
type generateOptions struct {
	source   string
	kind     string
	output   string
	name     string
	server   string
	noViewer bool
	pick     bool
	timeout  time.Duration
	print    string
	kindSet  bool // --type given explicitly
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a Mermaid diagram from a Markdown file as a PlantUML image",
		Long: `Extract the first Mermaid diagram of the given type from a Markdown file,
convert it to PlantUML, render it on a PlantUML server and save the PNG as
<output>/<YYYYMMDD_HHMM>_<name>.png together with <name>_viewer.html.

Diagram types: ` + diagram.KindNames() + `.`,
		Example: `  # Sequence diagram into ./output
  mdtouml generate -s docs/auth.md -n auth_flow

  # Flowchart, private server, machine-readable result
  mdtouml generate -s docs/build.md -t flowchart --server https://plantuml.internal --print json

  # Choose among all Mermaid blocks interactively
  mdtouml generate -s docs/design.md --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.kindSet = cmd.Flags().Changed("type")
			return c.runGenerate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Markdown file to read (required)")
	cmd.Flags().StringVarP(&opts.kind, "type", "t", diagram.DefaultKind.String(), "diagram type: "+diagram.KindNames())
	cmd.Flags().StringVarP(&opts.output, "output", "o", c.Config.Output, "output directory")
	cmd.Flags().StringVarP(&opts.name, "name", "n", pipeline.DefaultName, "base name of the generated files")
	cmd.Flags().StringVar(&opts.server, "server", c.Config.Server, "PlantUML server base URL")
	cmd.Flags().BoolVar(&opts.noViewer, "no-viewer", !c.Config.Viewer, "skip the HTML viewer")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the Mermaid block interactively")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", c.Config.Timeout, "HTTP timeout (0 = none)")
	cmd.Flags().StringVar(&opts.print, "print", "", "print the result record instead of status lines: json or yaml")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.RegisterFlagCompletionFunc("type", completeKinds)
	_ = cmd.RegisterFlagCompletionFunc("print", cobra.FixedCompletions([]string{printJSON, printYAML}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, w io.Writer, opts generateOptions) error {
	kind, err := diagram.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	if opts.print != "" && opts.print != printJSON && opts.print != printYAML {
		return errors.New(errors.ErrCodeInvalidInput, "invalid --print %q (must be json or yaml)", opts.print)
	}

	logger := loggerFromContext(ctx)
	popts := pipeline.Options{
		Source:   opts.source,
		Kind:     kind,
		Output:   opts.output,
		Name:     opts.name,
		Server:   opts.server,
		NoViewer: opts.noViewer,
		Logger:   logger,
	}

	if opts.pick {
		block, err := pickBlock(opts.source)
		if err != nil {
			return err
		}
		popts.Block = block.Content
		popts.Picked = true
		if !opts.kindSet {
			popts.Kind = block.Kind
		}
		logger.Debug("picked block", "index", block.Index+1, "line", block.Line, "kind", popts.Kind)
	}

	quiet := opts.print != ""
	var spinner *Spinner
	if !quiet {
		spinner = newSpinner(ctx, os.Stderr, "Starting...")
		spinner.Start()
	}
	installHooks(logger, spinner)

	result, err := c.newRunner(logger, opts.timeout).Execute(ctx, popts)
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
	p.success("Generated %s diagram", kindLabel(result.Kind.String()))
	p.file(result.LocalPath)
	if result.ViewerPath != "" {
		p.file(result.ViewerPath)
	}
	p.field("Server", popts.Server)
	p.field("Image", fmt.Sprintf("%s, %d bytes", result.Format, result.Bytes))
	p.link(truncate(result.URL, 96))
	if result.ViewerPath != "" {
		p.hint("Open the viewer", "open "+result.ViewerPath)
	}
	return nil
}

// pickBlock lets the user choose a Mermaid block of path. A document with a
// single block needs no interaction.
func pickBlock(path string) (*markdown.Block, error) {
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	blocks := markdown.Scan(src)
	switch len(blocks) {
	case 0:
		return nil, errors.New(errors.ErrCodeNoMatch, "no Mermaid blocks in %s", path)
	case 1:
		return &blocks[0], nil
	}

	final, err := tea.NewProgram(NewBlockListModel(path, blocks)).Run()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "block picker")
	}
	m, ok := final.(BlockListModel)
	if !ok || m.Selected == nil {
		return nil, context.Canceled
	}
	return m.Selected, nil
}

// writeResult prints the result record in the given format.
func writeResult(w io.Writer, result *pipeline.Result, format string) error {
	switch format {
	case printYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func completeKinds(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		names[i] = k.String()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
