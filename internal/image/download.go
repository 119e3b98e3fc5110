package imagepkg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/youruser/cardinserts/internal/cards"
)

// maxImageSize caps a single image download (20MB).
const maxImageSize = 20 << 20

// Fetcher turns an image source into raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// FetchError reports a failed image download.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPFetcher downloads images with a shared client. The client is only
// read, so one fetcher serves every worker.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPFetcher uses client for all requests and bounds each one by timeout.
func NewHTTPFetcher(client *http.Client, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, timeout: timeout}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, &FetchError{URL: src, Err: err}
	}
	req.Header.Set("User-Agent", cards.UserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/*;q=0.8,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: src, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: src, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, &FetchError{URL: src, Err: err}
	}
	if len(body) > maxImageSize {
		return nil, &FetchError{URL: src, Err: fmt.Errorf("image larger than %d bytes", maxImageSize)}
	}
	return body, nil
}
