package sources

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const userAgent = "alert-digest/1.0 (+https://github.com/RobinCoderZhao/alert-digest)"

// RSSSource reads RSS and Atom feeds over HTTP or from local files.
type RSSSource struct {
	client *http.Client
	parser *gofeed.Parser
	policy *bluemonday.Policy
	logger *slog.Logger
}

// NewRSSSource creates a feed reader whose HTTP requests time out after
// timeout.
func NewRSSSource(timeout time.Duration) *RSSSource {
	return NewRSSSourceWithClient(&http.Client{Timeout: timeout})
}

// NewRSSSourceWithClient creates a feed reader using client.
func NewRSSSourceWithClient(client *http.Client) *RSSSource {
	return &RSSSource{
		client: client,
		parser: gofeed.NewParser(),
		policy: bluemonday.StrictPolicy(),
		logger: slog.Default(),
	}
}

// Fetch reads feedURL. http(s) URLs are downloaded; anything else is read
// as a file path (a "file://" prefix is accepted).
func (r *RSSSource) Fetch(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	body, err := r.open(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := r.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))
	dropped := 0
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		e := r.convertItem(item)
		if e.Link == "" {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	r.logger.Debug("feed parsed", "feed", feedURL, "entries", len(entries), "without_link", dropped)
	return entries, nil
}

func (r *RSSSource) open(ctx context.Context, feedURL string) (io.ReadCloser, error) {
	lower := strings.ToLower(feedURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		f, err := os.Open(strings.TrimPrefix(feedURL, "file://"))
		if err != nil {
			return nil, fmt.Errorf("open feed file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch feed %s: HTTP %d", feedURL, resp.StatusCode)
	}
	return resp.Body, nil
}

func (r *RSSSource) convertItem(item *gofeed.Item) FeedEntry {
	e := FeedEntry{
		Title:     r.cleanTitle(item.Title),
		Link:      strings.TrimSpace(item.Link),
		HintHTML:  item.Description,
		Published: item.Published,
	}
	if e.Link == "" && len(item.Links) > 0 {
		e.Link = strings.TrimSpace(item.Links[0])
	}
	if strings.TrimSpace(e.HintHTML) == "" {
		e.HintHTML = item.Content
	}
	if e.Published == "" {
		e.Published = item.Updated
	}
	return e
}

// cleanTitle drops markup from alert titles, which highlight the matched
// query with <b> tags.
func (r *RSSSource) cleanTitle(title string) string {
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(title)))
}
