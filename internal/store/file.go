package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zhouzirui/talker-manager/backend/internal/model/talker"
)

// FileStore keeps the talker collection as a single indented JSON array.
type FileStore struct {
	path string
}

var _ talker.Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the JSON file at path. The file
// itself is not created until the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the whole file.
func (s *FileStore) Load(ctx context.Context) ([]talker.Talker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, unavailable("read "+s.path, err)
	}

	var talkers []talker.Talker
	if err := json.Unmarshal(data, &talkers); err != nil {
		return nil, unavailable("decode "+s.path, err)
	}
	if talkers == nil {
		talkers = []talker.Talker{}
	}
	return talkers, nil
}

// Save overwrites the file with talkers, two-space indented.
func (s *FileStore) Save(ctx context.Context, talkers []talker.Talker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if talkers == nil {
		talkers = []talker.Talker{}
	}

	data, err := json.MarshalIndent(talkers, "", "  ")
	if err != nil {
		return fmt.Errorf("encode talkers: %w", err)
	}
	if err := atomicWriteFile(s.path, data, 0o644); err != nil {
		return unavailable("write "+s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error {
	return nil
}

// atomicWriteFile writes to a temp file in the target directory and renames
// it over path, so readers never observe a half-written array.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".talker-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
