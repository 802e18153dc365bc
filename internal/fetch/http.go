package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPFetcher fetches assets over HTTP(S).
//
// The fetcher sends a configured User-Agent header on every request and
// treats any non-200 response as a failed fetch.
//
// Example usage:
//
//	fetcher := NewHTTPFetcher("asset-preloader", 60*time.Second)
//	res, err := fetcher.Fetch(ctx, "https://cdn.example.com/logo.png")
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPFetcher creates an HTTPFetcher with the given User-Agent and
// request timeout. A timeout of 0 disables the client timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch performs a GET request for the asset and returns its bytes as a
// Resource.
//
// Returns an error if:
//   - The request fails or times out
//   - The response status is not 200 OK
//   - Reading the body fails
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return NewResource(path, data, resp.Header.Get("Content-Type")), nil
}

// Size returns the size of the asset at the given path via HEAD request.
//
// Returns an error if the request fails or the server doesn't send a
// Content-Length header.
func (f *HTTPFetcher) Size(ctx context.Context, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", path)
	}

	return resp.ContentLength, nil
}
