package util

import (
	"net/http"
	"time"
)

// NewHTTPClient returns the client shared by all fetches of a run. The
// transport keeps enough idle connections for a full worker pool against
// one image host.
func NewHTTPClient(timeout time.Duration, workers int) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if workers > tr.MaxIdleConnsPerHost {
		tr.MaxIdleConnsPerHost = workers
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}
