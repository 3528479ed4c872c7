package positions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// FileStore keeps the saved-position map as one JSON object on disk.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore returns a store backed by path. The file need not exist.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger.With(zap.String("store", path))}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load returns every valid saved entry. Unreadable files, malformed JSON and
// malformed entries are skipped rather than reported.
func (s *FileStore) Load() map[string]Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() map[string]Point {
	out := make(map[string]Point)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Saved positions unreadable, starting empty", zap.Error(err))
		}
		return out
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Debug("Saved positions malformed, starting empty", zap.Error(err))
		return out
	}

	for id, msg := range raw {
		var p Point
		if err := json.Unmarshal(msg, &p); err != nil || !p.Valid() {
			s.logger.Debug("Skipping malformed saved position", zap.String("nodeID", id))
			continue
		}
		out[id] = p
	}
	return out
}

// Save upserts id and rewrites the file atomically via a temp file + rename.
func (s *FileStore) Save(id string, p Point) error {
	if id == "" {
		return apperrors.NewValidation("node id is required")
	}
	if !p.Valid() {
		return apperrors.NewValidation(fmt.Sprintf("position for %q is not finite", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.read()
	all[id] = p

	data, err := json.Marshal(all)
	if err != nil {
		return apperrors.NewInternal("marshal saved positions", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.NewInternal("create positions directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.NewInternal("create temp positions file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperrors.NewInternal("write temp positions file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewInternal("close temp positions file", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewInternal("replace positions file", err)
	}

	s.logger.Debug("Saved node position", zap.String("nodeID", id), zap.Float64("x", p.X), zap.Float64("y", p.Y))
	return nil
}
