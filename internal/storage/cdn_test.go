package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCDNStoreRehostsSourceFile(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer origin.Close()

	files, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	store, err := NewCDNStore(files, "http://localhost:8080/static/", origin.Client())
	if err != nil {
		t.Fatalf("NewCDNStore returned error: %v", err)
	}

	permanentURL, err := store.Store(context.Background(), origin.URL+"/x.png")
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if !strings.HasPrefix(permanentURL, "http://localhost:8080/static/assets/") {
		t.Fatalf("permanentURL = %q, want static assets prefix", permanentURL)
	}
	if !strings.HasSuffix(permanentURL, ".png") {
		t.Fatalf("permanentURL = %q, want .png suffix", permanentURL)
	}

	key := strings.TrimPrefix(permanentURL, "http://localhost:8080/static/")
	data, err := os.ReadFile(filepath.Join(files.BasePath(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read persisted file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("persisted data = %q", data)
	}
}

func TestCDNStoreRejectsFailedDownload(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer origin.Close()

	files, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	store, err := NewCDNStore(files, "http://localhost:8080/static", origin.Client())
	if err != nil {
		t.Fatalf("NewCDNStore returned error: %v", err)
	}
	if _, err := store.Store(context.Background(), origin.URL+"/gone.png"); err == nil {
		t.Fatal("Store succeeded on 404 source")
	}
}

func TestCDNStoreRejectsInvalidSourceURL(t *testing.T) {
	files, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	store, err := NewCDNStore(files, "http://localhost:8080/static", nil)
	if err != nil {
		t.Fatalf("NewCDNStore returned error: %v", err)
	}
	if _, err := store.Store(context.Background(), "not a url"); err == nil {
		t.Fatal("Store accepted invalid url")
	}
}
