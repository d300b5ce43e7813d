package plantuml

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/mdtouml/pkg/buildinfo"
	"github.com/matzehuels/mdtouml/pkg/errors"
	"github.com/matzehuels/mdtouml/pkg/observability"
)

// DefaultServer is the public PlantUML server.
const DefaultServer = "http://www.plantuml.com/plantuml"

// deflateMarker selects deflate+base64 decoding on the server.
const deflateMarker = "~1"

// Client requests rendered diagrams from a PlantUML server.
type Client struct {
	server string
	http   *http.Client
}

// Image is a rendered diagram.
type Image struct {
	URL         string // URL the image was fetched from
	Data        []byte // Complete response body
	Format      string // Detected encoding, e.g. "png"
	ContentType string // Content-Type reported by the server
}

// NewClient creates a Client for server. An empty server selects
// [DefaultServer]; a nil httpClient selects a client with no timeout.
func NewClient(server string, httpClient *http.Client) *Client {
	if server == "" {
		server = DefaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		server: strings.TrimRight(server, "/"),
		http:   httpClient,
	}
}

// Server returns the base URL of the rendering server.
func (c *Client) Server() string { return c.server }

// ImageURL returns the PNG URL for the given PlantUML text.
func (c *Client) ImageURL(text string) string {
	return c.imageURL(Encode(text))
}

func (c *Client) imageURL(token string) string {
	return c.server + "/png/" + deflateMarker + token
}

// Fetch renders text as a PNG.
//
// Anything other than HTTP 200 with an image body is an error. The body is
// read completely before Fetch returns, so callers never see partial data.
func (c *Client) Fetch(ctx context.Context, text string) (*Image, error) {
	token := Encode(text)
	rawURL := c.imageURL(token)
	hooks := observability.Render()
	info := observability.RenderRequest{Host: host(rawURL), Format: "png", TokenLen: len(token)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", c.server)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks.OnRequest(ctx, info)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, info, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", c.server)
	}
	defer resp.Body.Close()

	hooks.OnResponse(ctx, info, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrap(errors.ErrCodeNetwork,
			&errors.StatusError{StatusCode: resp.StatusCode, Status: resp.Status},
			"rendering server %s rejected the diagram", c.server)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		hooks.OnError(ctx, info, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read image from %s", c.server)
	}

	if !IsImage(data) {
		return nil, errors.New(errors.ErrCodeInvalidResponse,
			"rendering server %s returned %d bytes that are not an image", c.server, len(data))
	}

	return &Image{
		URL:         rawURL,
		Data:        data,
		Format:      Format(data),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// String implements fmt.Stringer for log output.
func (i *Image) String() string {
	return fmt.Sprintf("%s image, %d bytes", i.Format, len(i.Data))
}
