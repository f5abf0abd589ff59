package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	apperrors "github.com/smartsales/salesctl/internal/errors"
)

// FileStore persists the credential pair as a JSON document on disk,
// readable only by the owning user.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file-backed credential store at path. The file is
// created lazily on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("[NewFileStore] path is required")
	}
	return &FileStore{path: path}, nil
}

func (fs *FileStore) Load() (Pair, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.load()
}

func (fs *FileStore) Save(pair Pair) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.save(pair)
}

func (fs *FileStore) SetAccess(access string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	pair, err := fs.load()
	if err != nil {
		return err
	}
	pair.Access = access
	return fs.save(pair)
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove")
	}
	return nil
}

func (fs *FileStore) load() (Pair, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, errors.Wrap(err, "[FileStore.Load] read")
	}
	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		return Pair{}, errors.Wrap(apperrors.ErrCredentialsCorrupt, err.Error())
	}
	return pair, nil
}

func (fs *FileStore) save(pair Pair) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStore.Save] mkdir")
	}
	data, err := json.Marshal(pair)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] marshal")
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Save] write")
	}
	return nil
}
