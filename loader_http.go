package stencil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"
)

// ErrUnexpectedStatus is returned by HTTPLoader when the server responds
// with a status other than 2xx or 404.
var ErrUnexpectedStatus = errors.New("unexpected response status")

var _ Loader = HTTPLoader{}

// HTTPLoader fetches templates over HTTP. It's meant to be used with a
// Registry whose directory is a URL, or with absolute template URLs.
type HTTPLoader struct {
	// Client is used to make requests. http.DefaultClient is used if
	// Client is nil.
	Client *http.Client

	// Timeout bounds each request. Zero means no timeout beyond the
	// context's own deadline.
	Timeout time.Duration
}

// Load GETs url and returns the response body. A 404 response is reported as
// an error matching fs.ErrNotExist.
func (l HTTPLoader) Load(ctx context.Context, url string) (string, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error building request for %q: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching %q: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return "", &fs.PathError{Op: "get", Path: url, Err: fs.ErrNotExist}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("error fetching %q: %w: %s", url, ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response for %q: %w", url, err)
	}
	return string(body), nil
}
