package plantuml

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/observability"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", nil)
	if c.Server() != DefaultServer {
		t.Errorf("Server() = %q, want %q", c.Server(), DefaultServer)
	}
	if c.http == nil {
		t.Error("NewClient() http client is nil")
	}
}

func TestImageURL(t *testing.T) {
	text := "@startuml\nA -> B\n@enduml"
	want := "http://www.plantuml.com/plantuml/png/~1" + Encode(text)

	if got := NewClient("", nil).ImageURL(text); got != want {
		t.Errorf("ImageURL() = %q, want %q", got, want)
	}
	// Trailing slashes on the server are dropped.
	if got := NewClient(DefaultServer+"/", nil).ImageURL(text); got != want {
		t.Errorf("ImageURL() with trailing slash = %q, want %q", got, want)
	}
}

func TestFetch(t *testing.T) {
	img := pngBytes(t)
	text := "@startuml\nA -> B\n@enduml"

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "mdtouml/") {
			t.Errorf("User-Agent = %q", ua)
		}
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/png")
		w.Write(img)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	got, err := c.Fetch(context.Background(), text)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/png/~1") {
		t.Errorf("request path = %q, want /png/~1 prefix", gotPath)
	}
	if got.URL != c.ImageURL(text) {
		t.Errorf("Image.URL = %q, want %q", got.URL, c.ImageURL(text))
	}
	if string(got.Data) != string(img) {
		t.Error("Image.Data does not match response body")
	}
	if got.Format != "png" {
		t.Errorf("Image.Format = %q, want png", got.Format)
	}
	if got.ContentType != "image/png" {
		t.Errorf("Image.ContentType = %q, want image/png", got.ContentType)
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Fetch(context.Background(), "@startuml\n@enduml")
	if err == nil {
		t.Fatal("Fetch() expected error")
	}
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeNetwork)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q should mention the status", err)
	}
}

func TestFetchNotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Fetch(context.Background(), "@startuml\n@enduml")
	if !errors.Is(err, errors.ErrCodeInvalidResponse) {
		t.Errorf("Fetch() error = %v, want %s", err, errors.ErrCodeInvalidResponse)
	}
}

func TestFetchBMP(t *testing.T) {
	img := bmpBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/bmp")
		w.Write(img)
	}))
	defer server.Close()

	got, err := NewClient(server.URL, server.Client()).Fetch(context.Background(), "@startuml\nA -> B\n@enduml")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got.Format != "bmp" {
		t.Errorf("Image.Format = %q, want bmp", got.Format)
	}
}

func TestFetchSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	NewClient(server.URL, server.Client()).Fetch(context.Background(), "@startuml\n@enduml")
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).Fetch(context.Background(), "@startuml\n@enduml")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("Fetch() error = %v, want %s", err, errors.ErrCodeNetwork)
	}
}

func TestFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(server.URL, server.Client()).Fetch(ctx, "@startuml\n@enduml")
	if err != context.Canceled {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

type renderLog struct {
	observability.NoopRenderHooks
	reqs     []observability.RenderRequest
	statuses []int
}

func (l *renderLog) OnRequest(_ context.Context, req observability.RenderRequest) {
	l.reqs = append(l.reqs, req)
}

func (l *renderLog) OnResponse(_ context.Context, _ observability.RenderRequest, status int, _ time.Duration) {
	l.statuses = append(l.statuses, status)
}

func TestFetchReportsRenderHooks(t *testing.T) {
	rec := &renderLog{}
	observability.Set(observability.Hooks{Render: rec})
	t.Cleanup(observability.Reset)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	text := "@startuml\nA -> B\n@enduml"
	if _, err := NewClient(server.URL, server.Client()).Fetch(context.Background(), text); err == nil {
		t.Fatal("Fetch() expected error for 502")
	}

	if len(rec.reqs) != 1 {
		t.Fatalf("OnRequest called %d times, want 1", len(rec.reqs))
	}
	req := rec.reqs[0]
	if req.TokenLen != len(Encode(text)) {
		t.Errorf("TokenLen = %d, want %d", req.TokenLen, len(Encode(text)))
	}
	if req.Host != strings.TrimPrefix(server.URL, "http://") {
		t.Errorf("Host = %q, want %q", req.Host, server.URL)
	}
	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusBadGateway {
		t.Errorf("OnResponse statuses = %v, want [502]", rec.statuses)
	}
}
