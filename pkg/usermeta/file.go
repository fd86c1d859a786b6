package usermeta

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileStore keeps meta values in a YAML document keyed by user id:
//
//	0b6f...:
//	  billing_person_type: legal
//	  billing_company_name: Acme
//
// Every Set rewrites the file through a temporary sibling and a rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	if err := checkArgs(ctx, userID, key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := doc[userID.String()][key]
	return value, ok, nil
}

func (s *FileStore) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	if err := checkArgs(ctx, userID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	id := userID.String()
	if doc[id] == nil {
		doc[id] = make(map[string]string)
	}
	doc[id][key] = value
	return s.write(doc)
}

func (s *FileStore) read() (map[string]map[string]string, error) {
	doc := make(map[string]map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("usermeta: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("usermeta: decode %s: %w", s.path, err)
	}
	if doc == nil {
		doc = make(map[string]map[string]string)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]map[string]string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("usermeta: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("usermeta: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".usermeta-*")
	if err != nil {
		return fmt.Errorf("usermeta: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("usermeta: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("usermeta: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("usermeta: replace %s: %w", s.path, err)
	}
	return nil
}
