package positions

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// Directory hands out one FileStore per browser profile, rooted under a
// single directory. Profiles are identified by UUID.
type Directory struct {
	root   string
	logger *zap.Logger

	mu     sync.Mutex
	stores map[uuid.UUID]*FileStore
}

// NewDirectory creates root if needed.
func NewDirectory(root string, logger *zap.Logger) (*Directory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperrors.NewInternal(fmt.Sprintf("create positions root %s", root), err)
	}
	return &Directory{root: root, logger: logger, stores: make(map[uuid.UUID]*FileStore)}, nil
}

// NewProfile mints a fresh profile id.
func NewProfile() string { return uuid.NewString() }

// ForProfile returns the store for a profile id, rejecting anything that is
// not a UUID so ids cannot escape the root directory.
func (d *Directory) ForProfile(profile string) (Store, error) {
	id, err := uuid.Parse(profile)
	if err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid profile id %q", profile))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.stores[id]; ok {
		return s, nil
	}
	s := NewFileStore(filepath.Join(d.root, id.String(), StorageKey+".json"), d.logger.With(zap.String("profile", id.String())))
	d.stores[id] = s
	return s, nil
}

// Root returns the directory all profiles live under.
func (d *Directory) Root() string { return d.root }
