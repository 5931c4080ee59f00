package stores

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/brettbedarf/assetfs"
	"github.com/pkg/errors"
)

// HTTPClient is the subset of *http.Client used by [HTTPStore]
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPTimeout bounds every asset request when the definition sets none
const DefaultHTTPTimeout = 30 * time.Second

// HTTPSource contains http-specific store definition fields
type HTTPSource struct {
	URL     string            `json:"url"` // Base URL the asset paths are appended to
	Headers map[string]string `json:"headers,omitempty"`
	Timeout *int              `json:"timeout,omitempty"` // Timeout in seconds
}

// HTTPProvider builds [HTTPStore]s from "http" definitions. A nil Client
// falls back to http.DefaultClient
type HTTPProvider struct {
	Client HTTPClient
}

func (p *HTTPProvider) NewStore(raw []byte) (assetfs.AssetStore, error) {
	var src HTTPSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, errors.Wrap(err, "couldn't parse http store definition")
	}
	base, err := validateBaseURL(src.URL)
	if err != nil {
		return nil, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := DefaultHTTPTimeout
	if src.Timeout != nil {
		timeout = time.Duration(*src.Timeout) * time.Second
	}
	return &HTTPStore{base: base, headers: src.Headers, client: client, timeout: timeout}, nil
}

func validateBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("http store requires a url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid http store url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("http store url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, errors.Errorf("http store url %q has no host", raw)
	}
	if u.User != nil {
		return nil, errors.Errorf("http store url %q must not carry user info; use headers", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

// HTTPStore serves assets from a web server. Files are fetched with
// GET {base}/{path}; directories are listed with GET {base}/{path}/ and a
// JSON array of names in the response body
type HTTPStore struct {
	base    *url.URL
	headers map[string]string
	client  HTTPClient
	timeout time.Duration
}

func (h *HTTPStore) urlFor(p string, dir bool) string {
	u := *h.base
	u.Path = u.Path + "/" + p
	if dir && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

func (h *HTTPStore) do(p string, dir bool) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.urlFor(p, dir), nil)
	if err != nil {
		cancel()
		return nil, nil, errors.Wrapf(assetfs.ErrInvalidPath, "%q: %s", p, err)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	if dir {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, errors.Wrapf(err, "request %q", p)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		cancel()
		return nil, nil, errors.Wrapf(assetfs.ErrNotFound, "%q", p)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_ = resp.Body.Close()
		cancel()
		return nil, nil, errors.Errorf("request %q: unexpected status %s", p, resp.Status)
	}
	return resp, cancel, nil
}

// cancelOnClose releases the request context together with the body
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func (h *HTTPStore) OpenForRead(p string) (io.ReadCloser, error) {
	resp, cancel, err := h.do(p, false)
	if err != nil {
		return nil, err
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (h *HTTPStore) ListChildren(p string) ([]string, error) {
	resp, cancel, err := h.do(p, true)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	// a JSON null body decodes to a nil slice
	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, errors.Wrapf(err, "decode listing %q", p)
	}
	if names != nil {
		slices.Sort(names)
	}
	return names, nil
}

var _ assetfs.AssetStore = (*HTTPStore)(nil)
