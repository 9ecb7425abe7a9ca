package spreadsheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// SourceOpener opens a dataset source: an http(s) URL or a local path.
type SourceOpener struct {
	client *http.Client
}

// NewSourceOpener creates an opener with a sane download timeout.
func NewSourceOpener() *SourceOpener {
	return &SourceOpener{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *SourceOpener) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if isRemote(source) {
		return o.fetch(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", source, err)
	}
	return f, nil
}

func (o *SourceOpener) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch url %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
