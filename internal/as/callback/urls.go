package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"asnode/internal/as/models"
	"asnode/internal/as/ports"
	"asnode/pkg/platform/sentinel"
)

// ErrorURLKey is the store key of the error notification URL.
const ErrorURLKey = "error"

// URLSet is the node's callback configuration. It is populated by Load at
// startup and changed only through Set.
type URLSet struct {
	mu       sync.RWMutex
	errorURL string

	store   ports.NodeCallbackStore
	dataDir string
	nodeID  string
	logger  *slog.Logger
}

func NewURLSet(store ports.NodeCallbackStore, dataDir, nodeID string, logger *slog.Logger) *URLSet {
	if logger == nil {
		logger = slog.Default()
	}
	return &URLSet{store: store, dataDir: dataDir, nodeID: nodeID, logger: logger}
}

// Load reads the URLs from the durable store, falling back to the file
// mirror. Absence is logged and never fails startup.
func (s *URLSet) Load(ctx context.Context) {
	url, err := s.store.NodeCallbackURL(ctx, ErrorURLKey)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to load error callback url, trying file mirror", "error", err)
		}
		url, err = s.readMirror()
		if err != nil {
			s.logger.WarnContext(ctx, "error callback url has not been set", "key", ErrorURLKey)
			url = ""
		}
	}

	s.mu.Lock()
	s.errorURL = url
	s.mu.Unlock()
}

// Set persists urls and then applies them. The file mirror is best effort.
func (s *URLSet) Set(ctx context.Context, urls models.CallbackURLs) error {
	if urls.ErrorURL == "" {
		return nil
	}
	if err := s.store.SetNodeCallbackURL(ctx, ErrorURLKey, urls.ErrorURL); err != nil {
		return fmt.Errorf("persist error callback url: %w", err)
	}
	if err := s.writeMirror(urls.ErrorURL); err != nil {
		s.logger.WarnContext(ctx, "failed to mirror error callback url", "path", s.mirrorPath(), "error", err)
	}

	s.mu.Lock()
	s.errorURL = urls.ErrorURL
	s.mu.Unlock()
	return nil
}

// Get returns a snapshot of the configured URLs.
func (s *URLSet) Get() models.CallbackURLs {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CallbackURLs{ErrorURL: s.errorURL}
}

func (s *URLSet) mirrorPath() string {
	return filepath.Join(s.dataDir, "as-callback-url-"+s.nodeID+"-"+ErrorURLKey)
}

func (s *URLSet) readMirror() (string, error) {
	raw, err := os.ReadFile(s.mirrorPath())
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(string(raw))
	if url == "" {
		return "", sentinel.ErrNotFound
	}
	return url, nil
}

func (s *URLSet) writeMirror(url string) error {
	if s.dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.mirrorPath(), []byte(url), 0o600)
}
