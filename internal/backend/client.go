// Package backend implements the GET pipeline shared by every dashboard
// action: resolve a path against the session base URL, issue one request,
// classify the outcome.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Client issues single-attempt GET requests against the resolved backend.
// No retries, no timeout, no custom headers.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// Result is the dual-mode payload of a successful fetch: structured data
// when the response declared a JSON content type, raw text otherwise.
// Callers must handle both shapes.
type Result struct {
	StatusCode  int
	ContentType string
	Structured  bool
	JSON        any
	Text        string
}

// StatusError is a response whose status indicates failure, regardless of
// body content. The body text is carried so callers can display it.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d %s: %s", e.Code, e.Status, e.Body)
}

// Fetch resolves path against the client base URL and performs one GET.
// Absolute paths pass through untouched, relative ones resolve against the
// base. Non-2xx responses come back as *StatusError.
func (c *Client) Fetch(ctx context.Context, path string) (*Result, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: http.StatusText(resp.StatusCode),
			Body:   strings.TrimSpace(string(body)),
		}
	}

	ct := resp.Header.Get("Content-Type")
	res := &Result{StatusCode: resp.StatusCode, ContentType: ct, Text: string(body)}
	if isJSON(ct) {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode response from %s: %w", target, err)
		}
		res.Structured = true
		res.JSON = parsed
	}

	return res, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// isJSON recognizes application/json and any +json structured suffix.
func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
