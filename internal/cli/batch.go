package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mdtouml/pkg/batch"
	"github.com/matzehuels/mdtouml/pkg/errors"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "batch <jobs.toml>",
		Short: "Render every diagram listed in a TOML job file",
		Long: `Render the diagrams listed in a TOML job file one after another. A failing
entry is reported and the remaining entries still run; the command fails
if any entry failed.

Relative paths in the job file resolve against the file's directory.

  output = "output"
  server = "http://www.plantuml.com/plantuml"

  [[diagram]]
  source = "docs/auth.md"
  type   = "sequence"
  name   = "auth_flow"
  viewer = true`,
		Example: `  mdtouml batch diagrams.toml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd.Context(), cmd.OutOrStdout(), args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", c.Config.Timeout, "HTTP timeout per diagram (0 = none)")
	return cmd
}

func (c *CLI) runBatch(ctx context.Context, w io.Writer, path string, timeout time.Duration) error {
	logger := loggerFromContext(ctx)

	job, err := batch.LoadFile(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded job file", "path", path, "diagrams", len(job.Diagrams))
	installHooks(logger, nil)

	sw := startStopwatch(logger)
	report, err := batch.Run(ctx, c.newRunner(logger, timeout), job)
	if err != nil {
		return err
	}

	p := newPrinter(w)
	for _, o := range report.Outcomes {
		if o.Err != nil {
			p.failure("%s: %s", o.Entry.Source, errors.UserMessage(o.Err))
			continue
		}
		p.success("%s %s", o.Entry.Source, kindLabel(o.Result.Kind.String()))
		p.file(o.Result.LocalPath)
	}

	failed := report.Failed()
	sw.done(fmt.Sprintf("Rendered %d of %d diagrams", len(report.Outcomes)-failed, len(report.Outcomes)))
	if failed > 0 {
		p.warn("%d diagram(s) failed", failed)
	}
	return report.Err()
}
