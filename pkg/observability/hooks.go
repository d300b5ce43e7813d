// Package observability lets callers watch a conversion without the pipeline
// knowing who is watching.
//
// Two event streams exist: pipeline stages (extract, convert, fetch, write)
// and requests to the rendering server. Both start out as no-ops; the CLI
// installs log and spinner hooks at startup:
//
//	observability.Set(observability.Hooks{
//	    Pipeline: observability.Fanout(logHooks, spinnerHooks),
//	    Render:   logHooks,
//	})
//
// The pipeline reports each stage around its work:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageFetch, "sequence")
//	observability.Pipeline().OnStageComplete(ctx, observability.StageEvent{...})
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names one step of the conversion pipeline.
type Stage string

const (
	StageExtract Stage = "extract"
	StageConvert Stage = "convert"
	StageFetch   Stage = "fetch"
	StageWrite   Stage = "write"
)

func (s Stage) String() string { return string(s) }

// StageEvent describes a finished stage. Err is nil on success.
type StageEvent struct {
	Stage    Stage
	Kind     string
	Duration time.Duration
	Err      error
}

// PipelineHooks receives stage events.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage, kind string)
	OnStageComplete(ctx context.Context, ev StageEvent)
}

// RenderRequest describes one GET against the rendering server. The encoded
// diagram is reported by length only; tokens can be several kilobytes.
type RenderRequest struct {
	Host     string
	Format   string
	TokenLen int
}

// RenderHooks receives rendering-server events.
type RenderHooks interface {
	OnRequest(ctx context.Context, req RenderRequest)
	OnResponse(ctx context.Context, req RenderRequest, status int, d time.Duration)
	// OnError reports transport failures and truncated bodies.
	OnError(ctx context.Context, req RenderRequest, err error)
}

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage, string)  {}
func (NoopPipelineHooks) OnStageComplete(context.Context, StageEvent) {}

// NoopRenderHooks ignores every event. Embed it to implement a subset.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRequest(context.Context, RenderRequest)                       {}
func (NoopRenderHooks) OnResponse(context.Context, RenderRequest, int, time.Duration) {}
func (NoopRenderHooks) OnError(context.Context, RenderRequest, error)                 {}

// Fanout returns PipelineHooks that forward each event to all of hs in order.
func Fanout(hs ...PipelineHooks) PipelineHooks {
	return fanout(hs)
}

type fanout []PipelineHooks

func (f fanout) OnStageStart(ctx context.Context, stage Stage, kind string) {
	for _, h := range f {
		h.OnStageStart(ctx, stage, kind)
	}
}

func (f fanout) OnStageComplete(ctx context.Context, ev StageEvent) {
	for _, h := range f {
		h.OnStageComplete(ctx, ev)
	}
}

// Hooks is the set of installed hooks. Nil fields leave the current
// registration untouched.
type Hooks struct {
	Pipeline PipelineHooks
	Render   RenderHooks
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func defaults() Hooks {
	return Hooks{Pipeline: NoopPipelineHooks{}, Render: NoopRenderHooks{}}
}

// Set installs h. Call it before running any conversion.
func Set(h Hooks) {
	mu.Lock()
	defer mu.Unlock()
	if h.Pipeline != nil {
		current.Pipeline = h.Pipeline
	}
	if h.Render != nil {
		current.Render = h.Render
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.Pipeline
}

// Render returns the installed rendering-server hooks.
func Render() RenderHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.Render
}

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}
