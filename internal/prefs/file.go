package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps flags in a small YAML file. Every write rewrites the file
// through a temp file and rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) GetBool(_ context.Context, key string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return false, false, err
	}
	v, ok := values[key]
	return decode(v), ok, nil
}

func (f *FileStore) SetBool(_ context.Context, key string, value bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = encode(value)

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing prefs %s: %w", f.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return values, nil
}
