// Package report renders run results and the article history as Markdown.
package report

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/store"
	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

// File names written next to the dated report.
const (
	LatestFile  = "latest.md"
	HistoryFile = "all_articles.md"
	DateLayout  = "2006-01-02"
)

// Renderer formats entries with one language's labels.
type Renderer struct {
	labels i18n.Labels
}

// NewRenderer returns a renderer for lang.
func NewRenderer(lang i18n.Language) *Renderer {
	return &Renderer{labels: i18n.GetLabels(lang)}
}

// Labels returns the labels in use.
func (r *Renderer) Labels() i18n.Labels { return r.labels }

// Daily renders the report for one run dated date.
func (r *Renderer) Daily(date string, entries []store.Entry) string {
	return r.Render(fmt.Sprintf(r.labels.DailyTitle, date), entries)
}

// History renders the full history. entries are expected newest first.
func (r *Renderer) History(entries []store.Entry) string {
	return r.Render(r.labels.HistoryTitle, entries)
}

// Render writes a titled Markdown document with one section per entry.
func (r *Renderer) Render(title string, entries []store.Entry) string {
	header := "# " + title + "\n\n"
	if len(entries) == 0 {
		return header + r.Body(nil)
	}
	return header + "\n" + r.Body(entries)
}

// Body renders the entry sections without the document title.
func (r *Renderer) Body(entries []store.Entry) string {
	if len(entries) == 0 {
		return r.labels.NoArticles + "\n"
	}
	sections := make([]string, 0, len(entries))
	for _, e := range entries {
		sections = append(sections, r.section(e))
	}
	return strings.Join(sections, "\n")
}

func (r *Renderer) section(e store.Entry) string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = r.labels.Untitled
	}
	summary := strings.TrimSpace(e.Summary)
	if summary == "" {
		summary = r.labels.EmptySummary
	}

	var meta []string
	if e.Source != "" {
		meta = append(meta, r.labels.Source+": "+e.Source)
	}
	if e.Published != "" {
		meta = append(meta, r.labels.Published+": "+e.Published)
	}

	var b strings.Builder
	if e.Link != "" {
		fmt.Fprintf(&b, "## [%s](%s)", title, e.Link)
	} else {
		b.WriteString("## " + title)
	}
	if len(meta) > 0 {
		b.WriteString("  \n*" + strings.Join(meta, " | ") + "*")
	}
	b.WriteString("\n\n" + summary + "\n")
	return b.String()
}

// Paths lists the files written by Write.
type Paths struct {
	Daily   string
	Latest  string
	History string
}

// Writer writes the report files into a directory.
type Writer struct {
	dir      string
	renderer *Renderer
	logger   *slog.Logger
}

// NewWriter returns a writer for dir.
func NewWriter(dir string, lang i18n.Language) *Writer {
	return &Writer{dir: dir, renderer: NewRenderer(lang), logger: slog.Default()}
}

// Renderer returns the renderer used for the report files.
func (w *Writer) Renderer() *Renderer { return w.renderer }

// Write renders results as <date>.md and latest.md, and the history as
// all_articles.md, newest first. A failure on the dated or latest report
// is returned; a failure on the history report is only logged.
func (w *Writer) Write(now time.Time, results []store.Entry, history *store.History) (Paths, error) {
	date := now.Format(DateLayout)
	paths := Paths{
		Daily:   filepath.Join(w.dir, date+".md"),
		Latest:  filepath.Join(w.dir, LatestFile),
		History: filepath.Join(w.dir, HistoryFile),
	}

	daily := []byte(w.renderer.Daily(date, results))
	if err := store.WriteFileAtomic(paths.Daily, daily); err != nil {
		return paths, fmt.Errorf("write daily report: %w", err)
	}
	if err := store.WriteFileAtomic(paths.Latest, daily); err != nil {
		return paths, fmt.Errorf("write latest report: %w", err)
	}

	if err := store.WriteFileAtomic(paths.History, []byte(w.renderer.History(history.Newest()))); err != nil {
		w.logger.Warn("failed to write history report", "path", paths.History, "error", err)
		paths.History = ""
	}

	w.logger.Debug("reports written", "daily", paths.Daily, "entries", len(results), "history", history.Len())
	return paths, nil
}
