package imagepkg

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), 200*time.Millisecond)

	b, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	if err != nil || string(b) != "png-bytes" {
		t.Fatalf("Fetch ok = %q, %v", b, err)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("missing: err = %v", err)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/slow.png")
	if !errors.As(err, &fe) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("slow: err = %v, want FetchError wrapping deadline", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, srv.URL+"/ok.png")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v", err)
	}
}

func TestGenerateQRPNG(t *testing.T) {
	b, err := GenerateQRPNG("https://example.com/doc.pdf", 256)
	if err != nil {
		t.Fatalf("GenerateQRPNG: %v", err)
	}
	if len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Errorf("not a png: % x", b[:8])
	}
}
