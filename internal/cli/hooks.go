package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdtouml/pkg/observability"
)

// stageMessages are shown by the spinner while a stage runs.
var stageMessages = map[observability.Stage]string{
	observability.StageExtract: "Extracting diagram...",
	observability.StageConvert: "Converting to PlantUML...",
	observability.StageFetch:   "Rendering on PlantUML server...",
	observability.StageWrite:   "Writing files...",
}

// spinnerHooks follows pipeline stages on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	spinner *Spinner
}

func (h spinnerHooks) OnStageStart(_ context.Context, stage observability.Stage, _ string) {
	if msg, ok := stageMessages[stage]; ok {
		h.spinner.SetMessage(msg)
	}
}

// logHooks writes pipeline and rendering-server events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnStageStart(context.Context, observability.Stage, string) {}

func (h logHooks) OnStageComplete(_ context.Context, ev observability.StageEvent) {
	if ev.Err != nil {
		h.logger.Debug("stage failed", "stage", ev.Stage, "kind", ev.Kind, "duration", ev.Duration, "error", ev.Err)
		return
	}
	h.logger.Debug("stage done", "stage", ev.Stage, "kind", ev.Kind, "duration", ev.Duration)
}

func (h logHooks) OnRequest(_ context.Context, req observability.RenderRequest) {
	h.logger.Debug("render request", "host", req.Host, "format", req.Format, "token_len", req.TokenLen)
}

func (h logHooks) OnResponse(_ context.Context, req observability.RenderRequest, status int, d time.Duration) {
	h.logger.Debug("render response", "host", req.Host, "status", status, "duration", d)
}

func (h logHooks) OnError(_ context.Context, req observability.RenderRequest, err error) {
	h.logger.Debug("render error", "host", req.Host, "error", err)
}

// installHooks registers the debug log hooks, plus spinner updates when s
// is non-nil.
func installHooks(logger *log.Logger, s *Spinner) {
	lh := logHooks{logger: logger}
	pipeline := observability.PipelineHooks(lh)
	if s != nil {
		pipeline = observability.Fanout(lh, spinnerHooks{spinner: s})
	}
	observability.Set(observability.Hooks{Pipeline: pipeline, Render: lh})
}
