package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// File names used by JSONBackend inside its directory.
const (
	SeenFile    = "seen.json"
	HistoryFile = "all_articles.json"
)

// JSONBackend stores state as two JSON files in a directory.
type JSONBackend struct {
	dir    string
	logger *slog.Logger
}

// NewJSONBackend returns a backend rooted at dir.
func NewJSONBackend(dir string) *JSONBackend {
	return &JSONBackend{dir: dir, logger: slog.Default()}
}

func (b *JSONBackend) seenPath() string    { return filepath.Join(b.dir, SeenFile) }
func (b *JSONBackend) historyPath() string { return filepath.Join(b.dir, HistoryFile) }

// Load reads both files. Missing or unreadable files give empty state.
func (b *JSONBackend) Load(_ context.Context) (*State, error) {
	state := NewState()

	var seen []string
	if err := b.readJSON(b.seenPath(), &seen); err != nil {
		b.logger.Warn("ignoring unreadable seen file", "path", b.seenPath(), "error", err)
	}
	for _, uid := range seen {
		state.Seen.Add(uid)
	}

	var entries []Entry
	if err := b.readJSON(b.historyPath(), &entries); err != nil {
		b.logger.Warn("ignoring unreadable history file", "path", b.historyPath(), "error", err)
		entries = nil
	}
	state.History = NewHistory(entries)
	return state, nil
}

// SaveHistory rewrites the history file when it changed or does not exist.
func (b *JSONBackend) SaveHistory(_ context.Context, h *History) error {
	if !h.Changed() {
		if _, err := os.Stat(b.historyPath()); err == nil {
			return nil
		}
	}
	entries := h.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return b.writeJSON(b.historyPath(), entries)
}

// SaveSeen writes the seen set as a sorted array.
func (b *JSONBackend) SaveSeen(_ context.Context, seen SeenSet) error {
	return b.writeJSON(b.seenPath(), seen.Sorted())
}

// Close is a no-op.
func (b *JSONBackend) Close() error { return nil }

func (b *JSONBackend) readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (b *JSONBackend) writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
