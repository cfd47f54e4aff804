package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxAssetBytes bounds a single download; provider images are a few MB.
const maxAssetBytes = 64 << 20

// ObjectStore is the permanent-storage collaborator: it relocates a file
// reachable at sourceURL and returns the permanent URL it is served from.
type ObjectStore interface {
	Store(ctx context.Context, sourceURL string) (string, error)
}

// CDNStore downloads provider-hosted files and rehosts them under the local
// FileStore, mapping keys to public URLs via the configured base URL.
type CDNStore struct {
	files      *FileStore
	baseURL    string
	httpClient *http.Client
}

// NewCDNStore wires the store. A nil HTTP client gets a sensible default.
func NewCDNStore(files *FileStore, baseURL string, httpClient *http.Client) (*CDNStore, error) {
	if files == nil {
		return nil, errors.New("storage: file store is required")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("storage: base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &CDNStore{files: files, baseURL: baseURL, httpClient: httpClient}, nil
}

// Store fetches the source file and persists it under a fresh key.
func (s *CDNStore) Store(ctx context.Context, sourceURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || parsed.Scheme == "" {
		return "", fmt.Errorf("storage: invalid source url %q", sourceURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("storage: build download request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: download source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return "", fmt.Errorf("storage: read source: %w", err)
	}
	if len(data) > maxAssetBytes {
		return "", fmt.Errorf("storage: source exceeds %d bytes", maxAssetBytes)
	}

	key := fmt.Sprintf("assets/%s%s", uuid.NewString(), extensionFor(parsed.Path, resp.Header.Get("Content-Type")))
	savedKey, err := s.files.Write(ctx, key, data)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + savedKey, nil
}

func extensionFor(sourcePath, contentType string) string {
	if ext := strings.ToLower(path.Ext(sourcePath)); ext != "" && len(ext) <= 5 {
		return ext
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/png":
			return ".png"
		case "image/jpeg", "image/jpg":
			return ".jpg"
		case "image/webp":
			return ".webp"
		}
	}
	return ".bin"
}

var _ ObjectStore = (*CDNStore)(nil)
