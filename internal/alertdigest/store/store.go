// Package store keeps the dedup set and the append-only article history
// between runs.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
)

// UID returns the identifier of an article: the first 10 hex characters
// of the SHA-1 of its canonical URL.
func UID(canonicalURL string) string {
	sum := sha1.Sum([]byte(canonicalURL))
	return hex.EncodeToString(sum[:])[:10]
}

// Entry is one summarized article as stored in the history.
type Entry struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
}

// SeenSet holds the UIDs of every article already processed.
type SeenSet map[string]struct{}

// NewSeenSet returns a set holding uids.
func NewSeenSet(uids ...string) SeenSet {
	s := make(SeenSet, len(uids))
	for _, uid := range uids {
		s.Add(uid)
	}
	return s
}

// Has reports whether uid was seen.
func (s SeenSet) Has(uid string) bool {
	_, ok := s[uid]
	return ok
}

// Add records uid. Adding twice is a no-op.
func (s SeenSet) Add(uid string) {
	s[uid] = struct{}{}
}

// Sorted returns the UIDs in ascending order.
func (s SeenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for uid := range s {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

// History is the append-only list of summarized articles in encounter order.
type History struct {
	entries []Entry
	index   map[string]bool
	changed bool
}

// NewHistory builds a history from stored entries. Entries repeating an
// earlier UID are dropped.
func NewHistory(entries []Entry) *History {
	h := &History{index: make(map[string]bool, len(entries))}
	for _, e := range entries {
		if e.UID == "" || h.index[e.UID] {
			continue
		}
		h.index[e.UID] = true
		h.entries = append(h.entries, e)
	}
	return h
}

// Append adds e unless its UID is already in the history.
func (h *History) Append(e Entry) bool {
	if h.index == nil {
		h.index = make(map[string]bool)
	}
	if h.index[e.UID] {
		return false
	}
	h.index[e.UID] = true
	h.entries = append(h.entries, e)
	h.changed = true
	return true
}

// Has reports whether uid is recorded.
func (h *History) Has(uid string) bool { return h.index[uid] }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Newest returns a copy of the entries, newest first.
func (h *History) Newest() []Entry {
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// Changed reports whether Append added anything since the history was built.
func (h *History) Changed() bool { return h.changed }

// State is the persisted memory of the pipeline.
type State struct {
	Seen    SeenSet
	History *History
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Seen: NewSeenSet(), History: NewHistory(nil)}
}

// Merge records results in state: each UID is marked seen and appended to
// the history if absent. It returns the number of history entries added.
func Merge(state *State, results []Entry) int {
	added := 0
	for _, r := range results {
		state.Seen.Add(r.UID)
		if state.History.Append(r) {
			added++
		}
	}
	return added
}

// Backend persists State. SaveHistory and SaveSeen are separate so that
// the seen set can be written last, after the reports.
type Backend interface {
	Load(ctx context.Context) (*State, error)
	SaveHistory(ctx context.Context, h *History) error
	SaveSeen(ctx context.Context, seen SeenSet) error
	Close() error
}

// Save writes the history then the seen set.
func Save(ctx context.Context, b Backend, state *State) error {
	if err := b.SaveHistory(ctx, state.History); err != nil {
		return err
	}
	return b.SaveSeen(ctx, state.Seen)
}

// Backend kinds accepted by Open.
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// StateDBFile is the database file name used by the sqlite backend.
const StateDBFile = "state.db"

// Open returns the backend of the given kind storing its files in dir.
func Open(ctx context.Context, kind, dir string) (Backend, error) {
	switch kind {
	case "", KindJSON:
		return NewJSONBackend(dir), nil
	case KindSQLite:
		return NewSQLiteBackend(ctx, filepath.Join(dir, StateDBFile))
	default:
		return nil, fmt.Errorf("unknown state backend %q", kind)
	}
}
