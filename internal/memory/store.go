// Package memory persists simple key/value facts as a JSON file. The store
// is the only internally synchronized part of the decision core: reads and
// writes are mutex-guarded and every save goes through a temp file followed
// by an atomic rename, so a crash can never leave a half-written file.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const schemaVersion = 1

// Fact is one remembered value with its last-updated stamp.
type Fact struct {
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

type fileData struct {
	SchemaVersion int             `json:"schema_version"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
	Facts         map[string]Fact `json:"facts"`
}

type Store struct {
	path string

	mu   sync.Mutex
	data fileData
}

// Open loads the store at path, bootstrapping a fresh file when none exists.
// A file that fails to parse is renamed aside with a .corrupted suffix and
// the store restarts empty rather than failing.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory directory: %w", err)
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.data = bootstrap()
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read memory file: %w", err)
	}

	if err := json.Unmarshal(b, &s.data); err != nil {
		_ = os.Rename(path, path+".corrupted")
		s.data = bootstrap()
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	s.ensureShape()
	return s, nil
}

func (s *Store) GetFact(key string) (Fact, bool) {
	k := normalizeKey(key)
	if k == "" {
		return Fact{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.data.Facts[k]
	return f, ok
}

func (s *Store) SetFact(key, value string) error {
	k := normalizeKey(key)
	if k == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Facts[k] = Fact{Value: value, UpdatedAt: nowISO()}
	s.touch()
	return s.save()
}

// DeleteFact reports whether the key existed.
func (s *Store) DeleteFact(key string) (bool, error) {
	k := normalizeKey(key)
	if k == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.Facts[k]; !ok {
		return false, nil
	}
	delete(s.data.Facts, k)
	s.touch()
	return true, s.save()
}

func (s *Store) ListFactKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data.Facts))
	for k := range s.data.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) ensureShape() {
	if s.data.SchemaVersion == 0 {
		s.data.SchemaVersion = schemaVersion
	}
	if s.data.CreatedAt == "" {
		s.data.CreatedAt = nowISO()
	}
	if s.data.UpdatedAt == "" {
		s.data.UpdatedAt = nowISO()
	}
	if s.data.Facts == nil {
		s.data.Facts = map[string]Fact{}
	}
}

func (s *Store) touch() {
	s.data.UpdatedAt = nowISO()
}

// save assumes s.mu is held (or the store is not yet shared).
func (s *Store) save() error {
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func bootstrap() fileData {
	now := nowISO()
	return fileData{
		SchemaVersion: schemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		Facts:         map[string]Fact{},
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func nowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
