// Package cli implements the mdtouml command-line interface.
package cli

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/internal/config"
	"github.com/matzehuels/mdtouml/pkg/buildinfo"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = buildinfo.Name
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger. Flag defaults are
// seeded from the environment.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Load(pipeline.DefaultServer, pipeline.DefaultOutput),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mdtouml turns Mermaid diagrams in Markdown into PlantUML images",
		Long: `mdtouml extracts a Mermaid diagram from a Markdown file, rewrites it as PlantUML,
renders it on a PlantUML server and stores the PNG together with an HTML viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A zero timeout leaves
// requests unbounded.
func (c *CLI) newRunner(logger *log.Logger, timeout time.Duration) *pipeline.Runner {
	return pipeline.NewRunner(&http.Client{Timeout: timeout}, logger)
}

// readSource reads a Markdown file given on the command line.
func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "source %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read source %s", path)
	}
	return src, nil
}
