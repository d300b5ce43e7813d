// Package viewer writes the standalone HTML page that accompanies a rendered
// diagram.
//
// The page shows the PNG by default and can switch to a client-side Mermaid
// rendering of the original block. Both are exportable from the browser.
// The template is embedded into the binary using go:embed.
package viewer

import (
	"bytes"
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/mdtouml/pkg/buildinfo"
	"github.com/matzehuels/mdtouml/pkg/errors"
)

// MermaidJS is the Mermaid build the page loads.
const MermaidJS = "https://cdn.jsdelivr.net/npm/mermaid@9.3.0/dist/mermaid.min.js"

// TimeFormat renders the generation timestamp as dd/mm/yyyy HH:MM.
const TimeFormat = "02/01/2006 15:04"

const defaultTitle = "Diagram viewer"

//go:embed viewer.html.tmpl
var pageSource string

var page = template.Must(template.New("viewer").Parse(pageSource))

// Data is the content of a viewer page.
type Data struct {
	ImagePath string    // Rendered image; the page references it by base name
	Mermaid   string    // Mermaid block the image was produced from
	Title     string    // Page heading; defaults to "Diagram viewer"
	Generated time.Time // Defaults to now
}

type pageData struct {
	Title     string
	MermaidJS string
	Mermaid   string
	Image     string
	Stem      string
	Generated string
	Version   string
}

// Path returns where the viewer for base name lives, next to imagePath.
func Path(imagePath, name string) string {
	return filepath.Join(filepath.Dir(imagePath), name+"_viewer.html")
}

// Render returns the page for data.
func Render(data Data) ([]byte, error) {
	if data.ImagePath == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "viewer needs an image path")
	}
	if data.Title == "" {
		data.Title = defaultTitle
	}
	if data.Generated.IsZero() {
		data.Generated = time.Now()
	}

	image := filepath.Base(data.ImagePath)
	var buf bytes.Buffer
	err := page.Execute(&buf, pageData{
		Title:     data.Title,
		MermaidJS: MermaidJS,
		Mermaid:   data.Mermaid,
		Image:     image,
		Stem:      strings.TrimSuffix(image, filepath.Ext(image)),
		Generated: data.Generated.Format(TimeFormat),
		Version:   buildinfo.Version,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render viewer")
	}
	return buf.Bytes(), nil
}

// Write renders data and writes the page to path in one call.
func Write(path string, data Data) error {
	content, err := Render(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write viewer %s", path)
	}
	return nil
}
