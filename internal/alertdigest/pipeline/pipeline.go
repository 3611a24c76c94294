// Package pipeline runs one digest pass: read feeds, resolve and dedup
// items, fetch and summarize articles, persist state and write reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/report"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/resolver"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/sources"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/store"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/summarizer"
	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
	"github.com/RobinCoderZhao/alert-digest/pkg/metrics"
	"github.com/RobinCoderZhao/alert-digest/pkg/notify"
	"github.com/RobinCoderZhao/alert-digest/pkg/scraper"
)

// ErrNoFeeds is returned by Run when no feed is configured.
var ErrNoFeeds = errors.New("no feeds configured: set FEEDS or the feeds list in the config file")

// Options holds the run parameters.
type Options struct {
	Feeds      []string
	Sentences  int
	MaxPerFeed int
	Workers    int
	Language   i18n.Language
	// NotifyEmpty also notifies runs without new articles.
	NotifyEmpty bool
}

// Deps are the collaborators of a Pipeline. Notifier and Metrics may be nil.
type Deps struct {
	Source   sources.Source
	Fetcher  scraper.Fetcher
	Backend  store.Backend
	Reports  *report.Writer
	Notifier *notify.Dispatcher
	Metrics  metrics.Recorder
	Now      func() time.Time
}

// Item is a feed entry after URL resolution, ready to be summarized.
type Item struct {
	Title     string // display title, never empty
	RawTitle  string // feed title as read, may be empty
	Link      string // canonical article URL
	Source    string // domain of Link without "www."
	UID       string
	Hint      string // plain text of the feed hint
	Published string
}

// RunResult describes one completed run.
type RunResult struct {
	RunID      string
	Feeds      int
	FeedErrors int
	Candidates int
	Results    []store.Entry
	Added      int
	Reports    report.Paths
	Duration   time.Duration
}

// Pipeline wires the digest components together.
type Pipeline struct {
	opts       Options
	deps       Deps
	summarizer *summarizer.Summarizer
	labels     i18n.Labels
	logger     *slog.Logger
}

// New validates opts and deps and returns a Pipeline.
func New(opts Options, deps Deps) (*Pipeline, error) {
	if deps.Source == nil || deps.Fetcher == nil || deps.Backend == nil || deps.Reports == nil {
		return nil, errors.New("pipeline: source, fetcher, backend and reports are required")
	}
	if opts.Sentences < 1 {
		return nil, fmt.Errorf("pipeline: sentences must be positive, got %d", opts.Sentences)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Language == "" {
		opts.Language = i18n.LangFR
	}
	sum, err := summarizer.New(opts.Language)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		opts:       opts,
		deps:       deps,
		summarizer: sum,
		labels:     i18n.GetLabels(opts.Language),
		logger:     slog.Default(),
	}, nil
}

// Run performs one pass. It fails only when no feed is configured or the
// dated report cannot be written; everything else degrades and is logged.
// State is saved in this order: history, reports, seen set.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if len(p.opts.Feeds) == 0 {
		return nil, ErrNoFeeds
	}

	start := p.deps.Now()
	res := &RunResult{RunID: uuid.NewString(), Feeds: len(p.opts.Feeds)}
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("run started", "feeds", len(p.opts.Feeds), "language", p.opts.Language, "workers", p.opts.Workers)

	state, err := p.deps.Backend.Load(ctx)
	if err != nil {
		logger.Warn("failed to load state, starting empty", "error", err)
		state = store.NewState()
	}

	items := p.collect(ctx, logger, state.Seen, res)
	res.Candidates = len(items)
	logger.Info("new articles to process", "count", len(items))

	res.Results = p.process(ctx, logger, items)
	res.Added = store.Merge(state, res.Results)

	if err := p.deps.Backend.SaveHistory(ctx, state.History); err != nil {
		logger.Warn("failed to save history", "error", err)
	}

	now := p.deps.Now()
	paths, err := p.deps.Reports.Write(now, res.Results, state.History)
	res.Reports = paths
	if err != nil {
		return res, fmt.Errorf("write reports: %w", err)
	}

	if err := p.deps.Backend.SaveSeen(ctx, state.Seen); err != nil {
		logger.Warn("failed to save seen set", "error", err)
	}

	res.Duration = p.deps.Now().Sub(start)
	p.deps.Metrics.RecordRun(res.Added, res.Duration)
	p.notify(ctx, logger, now, res)

	logger.Info("run completed",
		"articles", len(res.Results),
		"added", res.Added,
		"feed_errors", res.FeedErrors,
		"report", paths.Daily,
		"duration", res.Duration,
	)
	return res, nil
}

// collect reads the feeds in order and returns the unseen items, first
// occurrence wins.
func (p *Pipeline) collect(ctx context.Context, logger *slog.Logger, seen store.SeenSet, res *RunResult) []Item {
	var items []Item
	pending := make(map[string]bool)

	for _, feedURL := range p.opts.Feeds {
		logger.Info("reading feed", "feed", feedURL)
		entries, err := p.deps.Source.Fetch(ctx, feedURL)
		if err != nil {
			logger.Warn("feed invalid or unreachable", "feed", feedURL, "error", err)
			res.FeedErrors++
			p.deps.Metrics.RecordFeed(false)
			continue
		}
		p.deps.Metrics.RecordFeed(true)

		if p.opts.MaxPerFeed > 0 && len(entries) > p.opts.MaxPerFeed {
			entries = entries[:p.opts.MaxPerFeed]
		}
		for _, e := range entries {
			item := p.resolve(e)
			if seen.Has(item.UID) || pending[item.UID] {
				continue
			}
			pending[item.UID] = true
			items = append(items, item)
		}
	}
	return items
}

func (p *Pipeline) resolve(e sources.FeedEntry) Item {
	link := strings.TrimSpace(e.Link)
	canonical := resolver.Resolve(link)
	if canonical == "" {
		canonical = link
	}
	rawTitle := strings.TrimSpace(e.Title)
	title := rawTitle
	if title == "" {
		title = p.labels.Untitled
	}
	return Item{
		Title:     title,
		RawTitle:  rawTitle,
		Link:      canonical,
		Source:    resolver.Domain(canonical),
		UID:       store.UID(canonical),
		Hint:      scraper.HTMLToText(e.HintHTML),
		Published: e.Published,
	}
}

// process summarizes items with at most Workers in flight. Results keep
// the order of items regardless of completion order. Items not started
// before ctx is done are left out.
func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, items []Item) []store.Entry {
	entries := make([]store.Entry, len(items))
	done := make([]bool, len(items))

	g := new(errgroup.Group)
	g.SetLimit(p.opts.Workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			entries[i] = p.summarizeItem(ctx, logger, item)
			done[i] = true
			return nil
		})
	}
	g.Wait()

	out := make([]store.Entry, 0, len(items))
	for i, ok := range done {
		if ok {
			out = append(out, entries[i])
		} else {
			logger.Warn("article skipped", "title", items[i].Title, "url", items[i].Link, "error", ctx.Err())
		}
	}
	return out
}

func (p *Pipeline) summarizeItem(ctx context.Context, logger *slog.Logger, item Item) store.Entry {
	fetched := p.deps.Fetcher.Fetch(ctx, item.Link)
	p.deps.Metrics.RecordFetch(fetched.Strategy.String(), fetched.Duration)

	sel := Select(fetched.Text, item.Hint, item.RawTitle)
	summary := p.summarizer.Summarize(sel.Text, p.opts.Sentences)
	text := summarizer.FormatBullets(summary.Sentences)
	if text == "" {
		text = p.labels.Unavailable
	}
	p.deps.Metrics.RecordSummary(string(sel.Source), string(summary.Tier))

	logger.Info("article summarized",
		"title", item.Title,
		"source", item.Source,
		"strategy", fetched.Strategy.String(),
		"text", sel.Source,
		"tier", summary.Tier,
	)
	return store.Entry{
		UID:       item.UID,
		Title:     item.Title,
		Link:      item.Link,
		Source:    item.Source,
		Published: item.Published,
		Summary:   text,
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, now time.Time, res *RunResult) {
	if p.deps.Notifier == nil || p.deps.Notifier.Len() == 0 {
		return
	}
	if len(res.Results) == 0 && !p.opts.NotifyEmpty {
		return
	}
	date := now.Format(report.DateLayout)
	msg := notify.Message{
		Title:    fmt.Sprintf(p.labels.DailyTitle, date),
		Body:     p.deps.Reports.Renderer().Body(res.Results),
		Format:   "markdown",
		Count:    len(res.Results),
		RunID:    res.RunID,
		Date:     date,
		Articles: make([]notify.Article, 0, len(res.Results)),
	}
	for _, path := range []string{res.Reports.Daily, res.Reports.Latest, res.Reports.History} {
		if path != "" {
			msg.Reports = append(msg.Reports, path)
		}
	}
	for _, e := range res.Results {
		msg.Articles = append(msg.Articles, notify.Article{
			Title:     e.Title,
			Link:      e.Link,
			Source:    e.Source,
			Published: e.Published,
			Summary:   e.Summary,
		})
	}
	if err := p.deps.Notifier.SendAll(ctx, msg); err != nil {
		logger.Warn("notification failed", "error", err)
	}
}
