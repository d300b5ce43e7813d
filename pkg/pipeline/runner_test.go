package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mdtouml/pkg/diagram"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/observability"
)

const sequenceDoc = "# Auth\n\n```mermaid\nsequenceDiagram\n    Alice->>Bob: hello\n```\n"

var fixedNow = time.Date(2024, 3, 5, 14, 7, 0, 0, time.Local)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

// renderServer answers every request with status and body, counting calls.
func renderServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s should not exist (stat error: %v)", path, err)
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t)
	server, calls := renderServer(t, http.StatusOK, img)
	out := filepath.Join(dir, "out")

	runner := NewRunner(server.Client(), nil)
	result, err := runner.Execute(context.Background(), Options{
		Source: writeSource(t, dir, sequenceDoc),
		Output: out,
		Name:   "auth",
		Server: server.URL,
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}

	wantCode := diagram.Convert("sequenceDiagram\n    Alice->>Bob: hello", diagram.KindSequence)
	if diff := cmp.Diff(wantCode, result.Code); diff != "" {
		t.Errorf("Result.Code mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(result.URL, server.URL+"/png/~1") {
		t.Errorf("Result.URL = %q", result.URL)
	}

	wantPath := filepath.Join(out, "20240305_1407_auth.png")
	if !filepath.IsAbs(result.LocalPath) || filepath.Base(result.LocalPath) != filepath.Base(wantPath) {
		t.Errorf("Result.LocalPath = %q, want absolute %q", result.LocalPath, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("image not written: %v", err)
	}
	if !bytes.Equal(data, img) {
		t.Error("written image differs from response body")
	}
	if result.Bytes != len(img) || result.Format != "png" {
		t.Errorf("Result bytes/format = %d/%q", result.Bytes, result.Format)
	}

	if filepath.Base(result.ViewerPath) != "auth_viewer.html" {
		t.Errorf("Result.ViewerPath = %q", result.ViewerPath)
	}
	html, err := os.ReadFile(filepath.Join(out, "auth_viewer.html"))
	if err != nil {
		t.Fatalf("viewer not written: %v", err)
	}
	if !strings.Contains(string(html), `src="20240305_1407_auth.png"`) {
		t.Error("viewer does not reference the image")
	}
}

func TestExecuteNoViewer(t *testing.T) {
	dir := t.TempDir()
	server, _ := renderServer(t, http.StatusOK, pngBytes(t))
	out := filepath.Join(dir, "out")

	result, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
		Source:   writeSource(t, dir, sequenceDoc),
		Output:   out,
		Name:     "auth",
		Server:   server.URL,
		NoViewer: true,
		Now:      func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if result.ViewerPath != "" {
		t.Errorf("Result.ViewerPath = %q, want empty", result.ViewerPath)
	}
	assertNotExist(t, filepath.Join(out, "auth_viewer.html"))
}

func TestExecuteMissingSource(t *testing.T) {
	dir := t.TempDir()
	server, calls := renderServer(t, http.StatusOK, pngBytes(t))
	out := filepath.Join(dir, "out")

	_, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
		Source: filepath.Join(dir, "missing.md"),
		Output: out,
		Server: server.URL,
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("Execute() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
	if calls.Load() != 0 {
		t.Error("server should not be contacted")
	}
	assertNotExist(t, out)
}

func TestExecuteNoMatch(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		kind   diagram.Kind
		block  string
		picked bool
	}{
		{"other kind only", "```mermaid\nflowchart LR\nA --> B\n```\n", diagram.KindSequence, "", false},
		{"empty generic block", "# x\n\n```mermaid\n```\n", diagram.KindGeneric, "", false},
		{"whitespace-only generic block", "```mermaid\n\n   \n```\n", diagram.KindGeneric, "", false},
		{"empty picked block", sequenceDoc, diagram.KindSequence, "", true},
		{"blank picked block", sequenceDoc, diagram.KindSequence, " \n\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			server, calls := renderServer(t, http.StatusOK, pngBytes(t))
			out := filepath.Join(dir, "out")

			_, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
				Source:   writeSource(t, dir, tt.doc),
				Kind:     tt.kind,
				Block:    tt.block,
				Picked:   tt.picked,
				Output:   out,
				Server:   server.URL,
				NoViewer: true,
			})
			if !errors.Is(err, errors.ErrCodeNoMatch) {
				t.Fatalf("Execute() error = %v, want %s", err, errors.ErrCodeNoMatch)
			}
			if calls.Load() != 0 {
				t.Error("server should not be contacted")
			}
			assertNotExist(t, out)
		})
	}
}

func TestExecuteServerFailureWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
		code   errors.Code
	}{
		{"server error", http.StatusInternalServerError, []byte("boom"), errors.ErrCodeNetwork},
		{"bad request", http.StatusBadRequest, []byte("syntax"), errors.ErrCodeNetwork},
		{"not an image", http.StatusOK, []byte("<html>oops</html>"), errors.ErrCodeInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			server, calls := renderServer(t, tt.status, tt.body)
			out := filepath.Join(dir, "out")

			_, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
				Source: writeSource(t, dir, sequenceDoc),
				Output: out,
				Server: server.URL,
			})
			if !errors.Is(err, tt.code) {
				t.Fatalf("Execute() error = %v, want %s", err, tt.code)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("server saw %d requests, want exactly 1", n)
			}
			assertNotExist(t, out)
		})
	}
}

func TestExecutePickedBlock(t *testing.T) {
	dir := t.TempDir()
	server, _ := renderServer(t, http.StatusOK, pngBytes(t))

	result, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
		Source:   writeSource(t, dir, "no fenced blocks here\n"),
		Kind:     diagram.KindClass,
		Block:    "\nclassDiagram\nclass Animal{\n}\n",
		Picked:   true,
		Output:   filepath.Join(dir, "out"),
		Server:   server.URL,
		NoViewer: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	want := "@startuml\ntitle Class diagram\n\nclass Animal {\n}\n@enduml"
	if diff := cmp.Diff(want, result.Code); diff != "" {
		t.Errorf("Result.Code mismatch (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	img := pngBytes(t)
	server, calls := renderServer(t, http.StatusOK, img)
	src := filepath.Join(dir, "sketch.puml")
	if err := os.WriteFile(src, []byte("\nAlice -> Bob: hi\n\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	out := filepath.Join(dir, "out")

	result, err := NewRunner(server.Client(), nil).Render(context.Background(), Options{
		Source: src,
		Output: out,
		Name:   "sketch",
		Server: server.URL,
		Now:    func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
	if diff := cmp.Diff("@startuml\nAlice -> Bob: hi\n@enduml", result.Code); diff != "" {
		t.Errorf("Result.Code mismatch (-want +got):\n%s", diff)
	}
	if result.Kind != diagram.KindGeneric {
		t.Errorf("Result.Kind = %q, want generic", result.Kind)
	}
	if result.ViewerPath != "" {
		t.Errorf("Result.ViewerPath = %q, want none", result.ViewerPath)
	}
	if _, err := os.Stat(filepath.Join(out, "20240305_1407_sketch.png")); err != nil {
		t.Errorf("image not written: %v", err)
	}
	assertNotExist(t, filepath.Join(out, "sketch_viewer.html"))
}

func TestRenderKeepsWrappedSource(t *testing.T) {
	dir := t.TempDir()
	server, _ := renderServer(t, http.StatusOK, pngBytes(t))
	src := filepath.Join(dir, "seq.puml")
	text := "@startuml\nA -> B\n@enduml"
	if err := os.WriteFile(src, []byte(text+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	result, err := NewRunner(server.Client(), nil).Render(context.Background(), Options{
		Source: src,
		Output: filepath.Join(dir, "out"),
		Server: server.URL,
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if result.Code != text {
		t.Errorf("Result.Code = %q, want %q", result.Code, text)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.puml")
	if err := os.WriteFile(empty, []byte(" \n\t\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	tests := []struct {
		name   string
		source string
		code   errors.Code
	}{
		{"missing file", filepath.Join(dir, "missing.puml"), errors.ErrCodeFileNotFound},
		{"blank file", empty, errors.ErrCodeNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := renderServer(t, http.StatusOK, pngBytes(t))
			out := filepath.Join(dir, "out-"+strings.ReplaceAll(tt.name, " ", "-"))

			_, err := NewRunner(server.Client(), nil).Render(context.Background(), Options{
				Source: tt.source,
				Output: out,
				Server: server.URL,
			})
			if !errors.Is(err, tt.code) {
				t.Fatalf("Render() error = %v, want %s", err, tt.code)
			}
			if n := calls.Load(); n != 0 {
				t.Errorf("server saw %d requests, want 0", n)
			}
			assertNotExist(t, out)
		})
	}
}

func TestConvertIsOffline(t *testing.T) {
	dir := t.TempDir()
	server, calls := renderServer(t, http.StatusOK, pngBytes(t))

	conv, err := NewRunner(server.Client(), nil).Convert(context.Background(), Options{
		Source: writeSource(t, dir, "```mermaid\nflowchart TB\nsubgraph Group1\nA-->B\nend\n```"),
		Kind:   diagram.KindFlowchart,
		Output: filepath.Join(dir, "out"),
		Server: server.URL,
	})
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if calls.Load() != 0 {
		t.Error("Convert() should not contact the server")
	}
	for _, want := range []string{"top to bottom direction", "package Group1 {", "A->B", "}\n@enduml"} {
		if !strings.Contains(conv.PlantUML, want) {
			t.Errorf("Convert() output missing %q:\n%s", want, conv.PlantUML)
		}
	}
	if conv.Mermaid != "flowchart TB\nsubgraph Group1\nA-->B\nend" {
		t.Errorf("Conversion.Mermaid = %q", conv.Mermaid)
	}
	assertNotExist(t, filepath.Join(dir, "out"))
}

func TestExecuteCanceled(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(dir, "out")
	_, err := NewRunner(server.Client(), nil).Execute(ctx, Options{
		Source: writeSource(t, dir, sequenceDoc),
		Output: out,
		Server: server.URL,
	})
	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	assertNotExist(t, out)
}

func TestImagePath(t *testing.T) {
	got := ImagePath("output", "diagram", time.Date(2023, 12, 31, 9, 5, 59, 0, time.UTC))
	want := filepath.Join("output", "20231231_0905_diagram.png")
	if got != want {
		t.Errorf("ImagePath() = %q, want %q", got, want)
	}
}

type stageRecorder struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	starts []string
	errs   map[observability.Stage]error
}

func (r *stageRecorder) OnStageStart(_ context.Context, stage observability.Stage, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, stage.String()+":"+kind)
}

func (r *stageRecorder) OnStageComplete(_ context.Context, ev observability.StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs == nil {
		r.errs = make(map[observability.Stage]error)
	}
	r.errs[ev.Stage] = ev.Err
}

func TestExecuteFiresStageHooks(t *testing.T) {
	rec := &stageRecorder{}
	observability.Set(observability.Hooks{Pipeline: rec})
	defer observability.Reset()

	dir := t.TempDir()
	server, _ := renderServer(t, http.StatusOK, pngBytes(t))
	_, err := NewRunner(server.Client(), nil).Execute(context.Background(), Options{
		Source:   writeSource(t, dir, sequenceDoc),
		Output:   filepath.Join(dir, "out"),
		Server:   server.URL,
		NoViewer: true,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	want := []string{"extract:sequence", "convert:sequence", "fetch:sequence", "write:sequence"}
	if diff := cmp.Diff(want, rec.starts); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
	for stage, err := range rec.errs {
		if err != nil {
			t.Errorf("stage %s reported error %v", stage, err)
		}
	}
}

func TestExecuteHookSeesFailure(t *testing.T) {
	rec := &stageRecorder{}
	observability.Set(observability.Hooks{Pipeline: rec})
	defer observability.Reset()

	dir := t.TempDir()
	_, err := NewRunner(nil, nil).Execute(context.Background(), Options{
		Source: filepath.Join(dir, "missing.md"),
	})
	if err == nil {
		t.Fatal("Execute() expected error")
	}
	if !errors.Is(rec.errs[observability.StageExtract], errors.ErrCodeFileNotFound) {
		t.Errorf("extract hook error = %v", rec.errs[observability.StageExtract])
	}
	if _, ok := rec.errs[observability.StageFetch]; ok {
		t.Error("fetch stage should not run")
	}
}
