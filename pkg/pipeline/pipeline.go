// Package pipeline provides the Markdown to PlantUML image pipeline.
//
// This package implements the complete extract → convert → fetch → write
// pipeline used by every CLI command, so single runs and batch jobs behave
// the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Extract: Read the Markdown source and pull out the first Mermaid block
//     of the requested kind (or take a block the caller already picked)
//  2. Convert: Rewrite the block as PlantUML text
//  3. Fetch: Render the text on a PlantUML server
//  4. Write: Store the image, and optionally an HTML viewer, on disk
//
// Nothing is written unless the first three stages succeed.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(nil, logger)
//	opts := pipeline.Options{
//	    Source: "docs/auth.md",
//	    Kind:   diagram.KindSequence,
//	    Name:   "auth_flow",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.LocalPath)
//
// Run the offline stages only:
//
//	conv, err := runner.Convert(ctx, opts)
//	fmt.Println(conv.PlantUML)
package pipeline

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/plantuml"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultOutput is the directory images are written to.
	DefaultOutput = "output"

	// DefaultName is the base name of generated files.
	DefaultName = "diagram"

	// TimestampFormat prefixes image file names (YYYYMMDD_HHMM).
	TimestampFormat = "20060102_1504"

	// ImageExt is the extension of rendered images.
	ImageExt = ".png"
)

// DefaultKind is the diagram kind extracted when none is given.
const DefaultKind = diagram.DefaultKind

// DefaultServer is the rendering server used when none is given.
const DefaultServer = plantuml.DefaultServer

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	Source   string       `json:"source"`
	Kind     diagram.Kind `json:"type"`
	Output   string       `json:"output,omitempty"`
	Name     string       `json:"name"`
	Server   string       `json:"server,omitempty"`
	NoViewer bool         `json:"no_viewer,omitempty"`

	// Block is a Mermaid block chosen by the caller. With Picked set it is
	// used instead of extracting from Source, which must still exist; an
	// empty Block is then NO_MATCH rather than a fallback to extraction.
	Block  string `json:"-"`
	Picked bool   `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the record of a successful run.
type Result struct {
	Code       string       `json:"code" yaml:"code"`
	URL        string       `json:"url" yaml:"url"`
	LocalPath  string       `json:"local_path" yaml:"local_path"`
	ViewerPath string       `json:"viewer_path,omitempty" yaml:"viewer_path,omitempty"`
	Kind       diagram.Kind `json:"type" yaml:"type"`
	Format     string       `json:"format" yaml:"format"`
	Bytes      int          `json:"bytes" yaml:"bytes"`

	// Stats contains timing information.
	Stats Stats `json:"-" yaml:"-"`
}

// Conversion is the offline part of a run: the block and its translation.
type Conversion struct {
	Kind     diagram.Kind
	Mermaid  string // Extracted block, surrounding whitespace removed
	PlantUML string // Converted text, @startuml ... @enduml
	URL      string // Image URL on the configured server

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ExtractTime time.Duration
	ConvertTime time.Duration
	FetchTime   time.Duration
	WriteTime   time.Duration
}

// Total returns the summed duration of all stages.
func (s Stats) Total() time.Duration {
	return s.ExtractTime + s.ConvertTime + s.FetchTime + s.WriteTime
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	err := validation.ValidateStruct(o,
		validation.Field(&o.Source, validation.Required.Error("is required")),
		validation.Field(&o.Kind, validation.In(kindValues()...).Error("must be one of: "+diagram.KindNames())),
		validation.Field(&o.Output, validation.Required),
		validation.Field(&o.Name, validation.Required, validation.By(baseName)),
		validation.Field(&o.Server, validation.By(serverURL)),
	)
	if err != nil {
		return classify(err)
	}

	o.validated = true
	return nil
}

// SetDefaults fills in empty fields.
func (o *Options) SetDefaults() {
	if o.Kind == "" {
		o.Kind = DefaultKind
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Server == "" {
		o.Server = DefaultServer
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Client returns a rendering client for the configured server.
func (o *Options) Client(httpClient *http.Client) *plantuml.Client {
	return plantuml.NewClient(o.Server, httpClient)
}

func kindValues() []any {
	values := make([]any, len(diagram.Kinds))
	for i, k := range diagram.Kinds {
		values[i] = k
	}
	return values
}

func baseName(value any) error {
	name, _ := value.(string)
	if err := errors.ValidateBaseName(name); err != nil {
		return stderrors.New(errors.UserMessage(err))
	}
	return nil
}

func serverURL(value any) error {
	server, _ := value.(string)
	if err := errors.ValidateURL(server); err != nil {
		return stderrors.New(errors.UserMessage(err))
	}
	return nil
}

// fieldCodes maps option fields to the error code reported when they fail,
// in the order they are checked.
var fieldCodes = []struct {
	field string
	code  errors.Code
}{
	{"source", errors.ErrCodeInvalidInput},
	{"type", errors.ErrCodeInvalidKind},
	{"output", errors.ErrCodeInvalidPath},
	{"name", errors.ErrCodeInvalidPath},
	{"server", errors.ErrCodeInvalidInput},
}

// classify turns ozzo validation errors into a coded error for the first
// failing field.
func classify(err error) error {
	var verrs validation.Errors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInternal, err, "validate options")
	}
	for _, fc := range fieldCodes {
		if ferr := verrs[fc.field]; ferr != nil {
			return errors.New(fc.code, "%s %s", fc.field, ferr.Error())
		}
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
}
