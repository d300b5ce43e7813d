package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/observability"
	"github.com/matzehuels/mdtouml/pkg/plantuml"
	"github.com/matzehuels/mdtouml/pkg/viewer"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the HTTP client and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	HTTP   *http.Client
	Logger *log.Logger
}

// NewRunner creates a runner with the given HTTP client and logger.
// If httpClient is nil, a client without timeout is used.
func NewRunner(httpClient *http.Client, logger *log.Logger) *Runner {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		HTTP:   httpClient,
		Logger: logger,
	}
}

// Execute runs the complete extract → convert → fetch → write pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	conv, err := r.Convert(ctx, opts)
	if err != nil {
		return nil, err
	}

	return r.render(ctx, conv, opts)
}

// Render fetches and writes a PlantUML file as it is. Source holds
// PlantUML text rather than Markdown; text without @startuml is framed by
// [plantuml.Wrap]. No viewer is written since there is no Mermaid block.
func (r *Runner) Render(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.Kind = diagram.KindGeneric
	opts.NoViewer = true
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	conv := &Conversion{Kind: opts.Kind}
	var src string
	var err error
	conv.Stats.ExtractTime, err = runStage(ctx, observability.StageExtract, opts.Kind, func() error {
		data, err := readSource(opts.Source)
		src = strings.TrimSpace(string(data))
		if err == nil && src == "" {
			err = errors.New(errors.ErrCodeNoMatch, "%s is empty", opts.Source)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	conv.Stats.ConvertTime, err = runStage(ctx, observability.StageConvert, opts.Kind, func() error {
		conv.PlantUML = plantuml.Wrap(src)
		conv.URL = opts.Client(r.HTTP).ImageURL(conv.PlantUML)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.render(ctx, conv, opts)
}

// render runs the fetch and write stages for a finished conversion.
func (r *Runner) render(ctx context.Context, conv *Conversion, opts Options) (*Result, error) {
	result := &Result{
		Code:  conv.PlantUML,
		URL:   conv.URL,
		Kind:  conv.Kind,
		Stats: conv.Stats,
	}

	// Stage 3: Fetch
	client := opts.Client(r.HTTP)
	var data []byte
	var err error
	result.Stats.FetchTime, err = runStage(ctx, observability.StageFetch, conv.Kind, func() error {
		img, err := client.Fetch(ctx, conv.PlantUML)
		if err != nil {
			return err
		}
		data = img.Data
		result.Format = img.Format
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Bytes = len(data)

	opts.Logger.Info("fetched image",
		"server", client.Server(),
		"bytes", len(data),
		"format", result.Format,
		"duration", result.Stats.FetchTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Write
	result.Stats.WriteTime, err = runStage(ctx, observability.StageWrite, conv.Kind, func() error {
		return r.write(result, data, conv, opts)
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("wrote image",
		"path", result.LocalPath,
		"duration", result.Stats.WriteTime,
		"total", result.Stats.Total())
	if result.ViewerPath != "" {
		opts.Logger.Debug("wrote viewer", "path", result.ViewerPath)
	}

	return result, nil
}

// Convert runs the offline stages: it reads the source, extracts the block
// and converts it. No network access takes place.
func (r *Runner) Convert(ctx context.Context, opts Options) (*Conversion, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	conv := &Conversion{Kind: opts.Kind}

	// Stage 1: Extract
	var err error
	conv.Stats.ExtractTime, err = runStage(ctx, observability.StageExtract, opts.Kind, func() error {
		block, err := extract(opts)
		conv.Mermaid = block
		return err
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("extracted diagram",
		"kind", opts.Kind,
		"lines", strings.Count(conv.Mermaid, "\n")+1,
		"duration", conv.Stats.ExtractTime)

	// Stage 2: Convert
	conv.Stats.ConvertTime, err = runStage(ctx, observability.StageConvert, opts.Kind, func() error {
		conv.PlantUML = diagram.Convert(conv.Mermaid, opts.Kind)
		conv.URL = opts.Client(r.HTTP).ImageURL(conv.PlantUML)
		return nil
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("converted diagram",
		"bytes", len(conv.PlantUML),
		"duration", conv.Stats.ConvertTime)

	return conv, nil
}

// ImagePath returns where an image rendered at t is written.
func ImagePath(output, name string, t time.Time) string {
	return filepath.Join(output, t.Format(TimestampFormat)+"_"+name+ImageExt)
}

func extract(opts Options) (string, error) {
	src, err := readSource(opts.Source)
	if err != nil {
		return "", err
	}

	if opts.Picked {
		block := strings.TrimSpace(opts.Block)
		if block == "" {
			return "", errors.New(errors.ErrCodeNoMatch, "picked Mermaid block in %s is empty", opts.Source)
		}
		return block, nil
	}

	// An empty block counts as no diagram.
	block, ok := diagram.Extract(string(src), opts.Kind)
	if !ok || block == "" {
		return "", errors.New(errors.ErrCodeNoMatch, "no %s diagram found in %s", opts.Kind, opts.Source)
	}
	return block, nil
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "source %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read source %s", path)
	}
	return data, nil
}

func (r *Runner) write(result *Result, data []byte, conv *Conversion, opts Options) error {
	if err := os.MkdirAll(opts.Output, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", opts.Output)
	}

	now := opts.Now()
	path, err := filepath.Abs(ImagePath(opts.Output, opts.Name, now))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "resolve output path")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write image %s", path)
	}
	result.LocalPath = path

	if opts.NoViewer {
		return nil
	}
	viewerPath := viewer.Path(path, opts.Name)
	err = viewer.Write(viewerPath, viewer.Data{
		ImagePath: path,
		Mermaid:   conv.Mermaid,
		Title:     fmt.Sprintf("%s - %s diagram", opts.Name, conv.Kind),
		Generated: now,
	})
	if err != nil {
		return err
	}
	result.ViewerPath = viewerPath
	return nil
}

// runStage wraps fn with pipeline hooks and timing.
func runStage(ctx context.Context, stage observability.Stage, kind diagram.Kind, fn func() error) (time.Duration, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, stage, kind.String())
	start := time.Now()
	err := fn()
	ev := observability.StageEvent{Stage: stage, Kind: kind.String(), Duration: time.Since(start), Err: err}
	hooks.OnStageComplete(ctx, ev)
	return ev.Duration, err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
