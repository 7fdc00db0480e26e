package portfolio

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Source yields the raw portfolio document.
type Source interface {
	Fetch() ([]byte, error)
	Name() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource otherwise.
func NewSource(location, apiKey, proxyURL string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, apiKey, proxyURL)
	}
	return FileSource{Path: location}
}

// FileSource reads the document from local disk.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) Fetch() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return nil, fmt.Errorf("read portfolio: %w", err)
	}
	return data, nil
}

// HTTPSource fetches the document from a remote endpoint.
type HTTPSource struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewHTTPSource creates a source with optional proxy support.
func NewHTTPSource(rawURL, apiKey, proxyURL string) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		URL:    rawURL,
		APIKey: apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (h *HTTPSource) Name() string { return h.URL }

func (h *HTTPSource) Fetch() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch portfolio: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h.URL)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch portfolio: status %d, body: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
