// Package batch runs several pipeline jobs described in a TOML file.
//
// A job file names an output directory and server shared by all entries,
// followed by one [[diagram]] table per image:
//
//	output = "output"
//	server = "http://www.plantuml.com/plantuml"
//
//	[[diagram]]
//	source = "docs/auth.md"
//	type   = "sequence"
//	name   = "auth_flow"
//
//	[[diagram]]
//	source = "docs/model.md"
//	type   = "class"
//	name   = "model"
//	viewer = false
//
// Entries run one after another in file order. A failing entry is recorded
// and the run moves on to the next one.
package batch

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/pipeline"
)

// Job is a parsed job file.
type Job struct {
	Output   string  `json:"output" toml:"output"`
	Server   string  `json:"server" toml:"server"`
	Diagrams []Entry `json:"diagram" toml:"diagram"`

	// Dir anchors relative paths. LoadFile sets it to the job file's directory.
	Dir string `json:"-" toml:"-"`
}

// Entry describes one diagram to render.
type Entry struct {
	Source string `json:"source" toml:"source"`
	Type   string `json:"type" toml:"type"`
	Name   string `json:"name" toml:"name"`
	Output string `json:"output" toml:"output"` // Overrides Job.Output
	Viewer *bool  `json:"viewer" toml:"viewer"` // Defaults to true
}

// Validate implements validation.Validatable.
func (j Job) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Diagrams, validation.Required.Error("needs at least one [[diagram]] entry")),
		validation.Field(&j.Server, validation.By(serverURL)),
	)
}

// Validate implements validation.Validatable.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Source, validation.Required),
		validation.Field(&e.Type, validation.In(kindNames()...).Error("must be one of: "+diagram.KindNames())),
		validation.Field(&e.Name, validation.By(baseName)),
	)
}

// Load parses and validates a job file.
func Load(r io.Reader) (*Job, error) {
	var job Job
	md, err := toml.NewDecoder(r).Decode(&job)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "parse job file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidJob, "unknown keys in job file: %s", strings.Join(keys, ", "))
	}
	if err := job.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "invalid job file")
	}
	return &job, nil
}

// LoadFile loads the job file at path. Relative paths inside it resolve
// against the file's directory.
func LoadFile(path string) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "job file %s does not exist", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidJob, err, "open job file %s", path)
	}
	defer f.Close()

	job, err := Load(f)
	if err != nil {
		return nil, err
	}
	job.Dir = filepath.Dir(path)
	return job, nil
}

// Options returns the pipeline options for entry i.
func (j *Job) Options(i int) pipeline.Options {
	e := j.Diagrams[i]
	output := e.Output
	if output == "" {
		output = j.Output
	}
	return pipeline.Options{
		Source:   j.resolve(e.Source),
		Kind:     diagram.Kind(e.Type),
		Output:   j.resolve(output),
		Name:     e.Name,
		Server:   j.Server,
		NoViewer: e.Viewer != nil && !*e.Viewer,
	}
}

func (j *Job) resolve(path string) string {
	if path == "" || j.Dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(j.Dir, path)
}

// Outcome is the result of one entry.
type Outcome struct {
	Entry  Entry
	Result *pipeline.Result // Set on success
	Err    error            // Set on failure
}

// Report collects the outcomes of a run in entry order.
type Report struct {
	Outcomes []Outcome
}

// Failed returns the number of entries that failed.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Err summarizes failures. It carries the code of the first failing entry
// and is nil when every entry succeeded.
func (r *Report) Err() error {
	for _, o := range r.Outcomes {
		if o.Err == nil {
			continue
		}
		code := errors.GetCode(o.Err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return errors.Wrap(code, o.Err, "%d of %d diagrams failed, first was %s", r.Failed(), len(r.Outcomes), o.Entry.Source)
	}
	return nil
}

// Run executes every entry of job with runner. It stops early only when
// ctx is canceled, returning the partial report and the context error.
func Run(ctx context.Context, runner *pipeline.Runner, job *Job) (*Report, error) {
	report := &Report{Outcomes: make([]Outcome, 0, len(job.Diagrams))}
	for i, entry := range job.Diagrams {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		logger := runner.Logger.With("entry", i+1, "source", entry.Source)
		opts := job.Options(i)
		opts.Logger = logger

		result, err := runner.Execute(ctx, opts)
		report.Outcomes = append(report.Outcomes, Outcome{Entry: entry, Result: result, Err: err})
		if err == nil {
			continue
		}
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return report, err
		}
		logger.Warn("diagram failed", "error", errors.UserMessage(err))
	}
	return report, nil
}

func kindNames() []any {
	names := make([]any, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		names[i] = k.String()
	}
	return names
}

func baseName(value any) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if err := errors.ValidateBaseName(name); err != nil {
		return stderrors.New(errors.UserMessage(err))
	}
	return nil
}

func serverURL(value any) error {
	server, _ := value.(string)
	if server == "" {
		return nil
	}
	if err := errors.ValidateURL(server); err != nil {
		return stderrors.New(errors.UserMessage(err))
	}
	return nil
}
