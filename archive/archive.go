// Package archive keeps completed sweep results under user-chosen names for
// later comparison and export.
package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"

	"github.com/cwbudde/algo-rcwa/sweep"
)

var (
	// ErrEmptyName is returned by Add for an empty name.
	ErrEmptyName = errors.New("archive: empty name")
	// ErrUnknownEntry is returned for names not in the store.
	ErrUnknownEntry = errors.New("archive: unknown entry")
)

// Entry is one row of the archive listing.
type Entry struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Store is a thread-safe collection of named results.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*sweep.Result
	order    []string
	selected []string
	newData  bool
}

var _ sweep.Archive = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*sweep.Result)}
}

// Add stores a copy of r under name, replacing an existing entry.
func (s *Store) Add(name string, r *sweep.Result) error {
	if name == "" {
		return ErrEmptyName
	}
	if r == nil {
		return fmt.Errorf("archive: nil result for %q", name)
	}
	c := r.Clone()
	c.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		s.order = append(s.order, name)
	}
	s.entries[name] = c
	s.newData = true
	return nil
}

// Get returns a copy of the entry stored under name.
func (s *Store) Get(name string) (*sweep.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// List returns the entries in insertion order.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Entry{Name: name, Color: s.entries[name].Color})
	}
	return out
}

// Select replaces the selection. All names must exist.
func (s *Store) Select(names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if _, ok := s.entries[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEntry, name)
		}
	}
	s.selected = slices.Compact(append([]string(nil), names...))
	s.newData = true
	return nil
}

// Selected returns the selected names.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

// Delete removes the named entries, or the selected entries when no name
// is given, and clears the selection. It returns the number of removed
// entries.
func (s *Store) Delete(names ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		names = s.selected
	}

	var n int
	for _, name := range names {
		if _, ok := s.entries[name]; !ok {
			continue
		}
		delete(s.entries, name)
		s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == name })
		n++
	}
	s.selected = nil
	s.newData = true
	return n
}

// Series returns the selected lines of every selected entry.
func (s *Store) Series(sel sweep.Selection) []sweep.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sweep.Series
	for _, name := range s.selected {
		if r, ok := s.entries[name]; ok {
			out = append(out, r.Series(sel)...)
		}
	}
	return out
}

// NewData reports whether the store changed since the last call.
func (s *Store) NewData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.newData
	s.newData = false
	return changed
}

// MarshalJSON encodes the store as an object mapping names to results.
func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.entries)
}

// Save writes the store as indented JSON.
func (s *Store) Save(w io.Writer) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// Load adds every result of a JSON object written by Save or MarshalJSON.
// Entries are added in name order.
func (s *Store) Load(r io.Reader) error {
	var in map[string]*sweep.Result
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("archive: decode: %w", err)
	}
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.Add(name, in[name]); err != nil {
			return err
		}
	}
	return nil
}
