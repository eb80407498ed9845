package history

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxEntries caps the number of stored entries.
const DefaultMaxEntries = 100

var (
	// ErrNotFound is returned when no entry matches an ID.
	ErrNotFound = errors.New("history entry not found")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("ambiguous history ID prefix")

	// ErrEmptyCommand is returned when adding a blank command.
	ErrEmptyCommand = errors.New("empty command")

	// ErrEmptyTag is returned when adding a blank tag.
	ErrEmptyTag = errors.New("empty tag")
)

// file is the on-disk layout.
type file struct {
	Entries []Entry `json:"entries"`
}

// Store is a JSON file of entries ordered newest first. All methods re-read
// the file so several processes can share it; a mutex serializes callers
// within one process.
type Store struct {
	path       string
	maxEntries int
	now        func() time.Time
	entropy    io.Reader
	logger     *slog.Logger

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries overrides DefaultMaxEntries. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithClock sets the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store backed by path. The file is created on first write.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:       path,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns the history file location inside the config directory.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "history.json")
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// List returns all entries, newest first.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the entry whose ID equals or uniquely starts with id.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	i, err := resolve(entries, id)
	if err != nil {
		return Entry{}, err
	}
	return entries[i], nil
}

// Add stores a new entry at the front. An older entry with the same command
// is dropped, and the list is truncated to the configured maximum.
func (s *Store) Add(rec Record) (Entry, error) {
	if strings.TrimSpace(rec.Command) == "" {
		return Entry{}, ErrEmptyCommand
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		return Entry{}, fmt.Errorf("generating id: %w", err)
	}

	entry := Entry{
		ID:          id.String(),
		Command:     rec.Command,
		Analysis:    rec.Analysis,
		Explanation: rec.Explanation,
		CommandType: rec.CommandType,
		Complexity:  rec.Complexity,
		Timestamp:   now,
		Tags:        []string{},
	}

	updated := make([]Entry, 0, len(entries)+1)
	updated = append(updated, entry)
	for _, e := range entries {
		if e.Command != rec.Command {
			updated = append(updated, e)
		}
	}
	if len(updated) > s.maxEntries {
		s.logger.Debug("history truncated", "dropped", len(updated)-s.maxEntries)
		updated = updated[:s.maxEntries]
	}

	if err := s.save(updated); err != nil {
		return Entry{}, err
	}
	s.logger.Debug("history entry added", "id", entry.ID, "entries", len(updated))
	return entry, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	var fav bool
	err := s.update(id, func(e *Entry) bool {
		e.IsFavorite = !e.IsFavorite
		fav = e.IsFavorite
		return true
	})
	return fav, err
}

// AddTag attaches tag to an entry. Adding an existing tag is a no-op.
func (s *Store) AddTag(id, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}
	return s.update(id, func(e *Entry) bool {
		for _, t := range e.Tags {
			if t == tag {
				return false
			}
		}
		e.Tags = append(e.Tags, tag)
		return true
	})
}

// RemoveTag detaches tag from an entry.
func (s *Store) RemoveTag(id, tag string) error {
	return s.update(id, func(e *Entry) bool {
		kept := e.Tags[:0]
		for _, t := range e.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		changed := len(kept) != len(e.Tags)
		e.Tags = kept
		return changed
	})
}

// Search returns entries whose command, explanation or tags contain query,
// ignoring case.
func (s *Store) Search(query string) ([]Entry, error) {
	q := strings.ToLower(query)
	return s.filter(func(e *Entry) bool {
		if strings.Contains(strings.ToLower(e.Command), q) ||
			strings.Contains(strings.ToLower(e.Summary()), q) {
			return true
		}
		for _, t := range e.Tags {
			if strings.Contains(strings.ToLower(t), q) {
				return true
			}
		}
		return false
	})
}

// Favorites returns the entries marked as favorite.
func (s *Store) Favorites() ([]Entry, error) {
	return s.filter(func(e *Entry) bool { return e.IsFavorite })
}

// FilterByTags returns entries carrying every tag in tags.
func (s *Store) FilterByTags(tags []string) ([]Entry, error) {
	return s.filter(func(e *Entry) bool {
		for _, t := range tags {
			if !e.HasTag(t) {
				return false
			}
		}
		return true
	})
}

// Recent returns entries newer than the given number of days.
func (s *Store) Recent(days int) ([]Entry, error) {
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.filter(func(e *Entry) bool { return e.Timestamp.After(cutoff) })
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Entry{})
}

func (s *Store) filter(keep func(*Entry) bool) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	result := []Entry{}
	for i := range entries {
		if keep(&entries[i]) {
			result = append(result, entries[i])
		}
	}
	return result, nil
}

// update applies fn to the entry matching id and saves when fn reports a change.
func (s *Store) update(id string, fn func(*Entry) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	i, err := resolve(entries, id)
	if err != nil {
		return err
	}
	if !fn(&entries[i]) {
		return nil
	}
	return s.save(entries)
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", s.path, err)
	}
	for i := range f.Entries {
		if f.Entries[i].Tags == nil {
			f.Entries[i].Tags = []string{}
		}
	}
	if f.Entries == nil {
		f.Entries = []Entry{}
	}
	return f.Entries, nil
}

// save writes entries through a temp file and rename so readers never see a
// partial file.
func (s *Store) save(entries []Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := json.MarshalIndent(file{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting history permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// resolve finds the index of the entry whose ID equals id or, failing that,
// is the only one starting with it.
func resolve(entries []Entry, id string) (int, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return -1, ErrNotFound
	}

	match := -1
	for i := range entries {
		if entries[i].ID == id {
			return i, nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}
