package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

var _ Store = (*FileStore)(nil)

// FileStore keeps all slots in one JSON document. The file is re-read on every call so
// writes from other processes are seen, and every write replaces it atomically.
type FileStore struct {
	path string
	lock sync.Mutex
}

// NewFileStore expands a leading ~ in path and makes sure its directory exists
func NewFileStore(path string) (*FileStore, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] Expand")
	}
	if err := os.MkdirAll(filepath.Dir(expanded), dirMode); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] MkdirAll")
	}
	return &FileStore{path: expanded}, nil
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key Key) (string, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (f *FileStore) Set(key Key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.load()
	if err != nil {
		// Unreadable content is replaced rather than blocking every future write
		values = make(map[Key]string)
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStore) Delete(key Key) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.load()
	if err != nil {
		values = make(map[Key]string)
	} else if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileStore) load() (map[Key]string, error) {
	values := make(map[Key]string)
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (f *FileStore) write(values map[Key]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] Marshal")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.write] CreateTemp")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.write] Chmod")
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.write] Write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.write] Sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore.write] Close")
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrap(err, "[FileStore.write] Rename")
	}
	return nil
}
