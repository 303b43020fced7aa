// Package cache is a small file-backed key/value store with expiry. Each key
// is one JSON document under the store directory.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/specimen-cli/internal/utils"
)

// Well-known keys used by the dashboard.
const (
	KeyDataset    = "specimen-data"
	KeyLastUpdate = "last-data-update"
)

const fileExt = ".json"

var (
	ErrNotFound = errors.New("cache entry not found")
	ErrExpired  = errors.New("cache entry expired")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Entry is the on-disk envelope around a cached value.
type Entry struct {
	ID       string          `json:"id"`
	Key      string          `json:"key"`
	StoredAt time.Time       `json:"stored_at"`
	Expiry   time.Time       `json:"expiry,omitempty"`
	Value    json.RawMessage `json:"value"`
}

// Expired reports whether the entry has an expiry at or before now.
func (e *Entry) Expired(now time.Time) bool {
	return !e.Expiry.IsZero() && !now.Before(e.Expiry)
}

// Store persists entries in a directory.
type Store struct {
	dir string
	now func() time.Time
}

// Open returns a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory not set")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

// Put stores v under key. A ttl of zero or less never expires.
func (s *Store) Put(key string, v any, ttl time.Duration) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	now := s.now()
	e := Entry{ID: uuid.NewString(), Key: key, StoredAt: now, Value: raw}
	if ttl > 0 {
		e.Expiry = now.Add(ttl)
	}
	data, err := utils.PrettyJSON(e)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(p, data)
}

// Get decodes the value stored under key into v. Expired entries are removed
// and reported as ErrExpired; unreadable entries are removed and reported as
// ErrNotFound.
func (s *Store) Get(key string, v any) (*Entry, error) {
	e, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		if err := json.Unmarshal(e.Value, v); err != nil {
			_ = s.Delete(key)
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
	}
	return e, nil
}

func (s *Store) read(key string) (*Entry, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		_ = os.Remove(p)
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if e.Expired(s.now()) {
		_ = os.Remove(p)
		return nil, fmt.Errorf("%s: %w", key, ErrExpired)
	}
	return &e, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// List returns the metadata of every live entry, sorted by key. Values are
// left out; expired entries are pruned as they are found.
func (s *Store) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	var out []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		e, err := s.read(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		e.Value = nil
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear() (int, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}
	n := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			return n, fmt.Errorf("delete cache entry: %w", err)
		}
		n++
	}
	return n, nil
}
