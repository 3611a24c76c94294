// Package sources reads alert feeds and turns their items into entries the
// pipeline can resolve and summarize.
package sources

import "context"

// FeedEntry is a single feed item, kept only for the duration of a run.
type FeedEntry struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	HintHTML  string `json:"hint_html,omitempty"` // item summary, else item content
	Published string `json:"published,omitempty"` // raw published, else raw updated
}

// Source is the interface feed readers implement.
type Source interface {
	// Fetch returns the entries of the feed at feedURL in feed order.
	// Entries without a link are discarded.
	Fetch(ctx context.Context, feedURL string) ([]FeedEntry, error)
}
