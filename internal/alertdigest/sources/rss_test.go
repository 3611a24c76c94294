package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const alertsAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Google Alert - budget</title>
  <entry>
    <title type="html">Le &lt;b&gt;budget&lt;/b&gt; 2025 &amp;amp; la dette</title>
    <link href="https://www.google.com/url?rct=j&amp;sa=t&amp;url=https://www.lemonde.fr/a/1&amp;ct=ga"/>
    <published>2025-01-02T08:00:00Z</published>
    <updated>2025-01-02T09:00:00Z</updated>
    <content type="html">Le gouvernement présente son &lt;b&gt;budget&lt;/b&gt;.</content>
  </entry>
  <entry>
    <title>Sans lien</title>
    <updated>2025-01-02T09:00:00Z</updated>
  </entry>
  <entry>
    <title>Only updated</title>
    <link href="https://example.com/b"/>
    <updated>2025-01-03T10:00:00Z</updated>
  </entry>
</feed>`

const plainRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>First</title><link>https://example.com/1</link><description>&lt;p&gt;Hint one&lt;/p&gt;</description><pubDate>Thu, 02 Jan 2025 08:00:00 GMT</pubDate></item>
<item><title>Second</title><link> https://example.com/2 </link></item>
</channel></rss>`

func TestRSSSourceAtom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent")
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(alertsAtom))
	}))
	defer srv.Close()

	entries, err := NewRSSSource(5*time.Second).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with links, got %d: %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Title != "Le budget 2025 &amp; la dette" && first.Title != "Le budget 2025 & la dette" {
		t.Errorf("title not sanitized: %q", first.Title)
	}
	if first.Link != "https://www.google.com/url?rct=j&sa=t&url=https://www.lemonde.fr/a/1&ct=ga" {
		t.Errorf("unexpected link %q", first.Link)
	}
	if first.HintHTML == "" {
		t.Error("expected content to be used as hint")
	}
	if first.Published != "2025-01-02T08:00:00Z" {
		t.Errorf("expected published date, got %q", first.Published)
	}
	if entries[1].Published != "2025-01-03T10:00:00Z" {
		t.Errorf("expected updated date as fallback, got %q", entries[1].Published)
	}
}

func TestRSSSourceLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	if err := os.WriteFile(path, []byte(plainRSS), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{path, "file://" + path} {
		entries, err := NewRSSSource(time.Second).Fetch(context.Background(), ref)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", ref, err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].HintHTML != "<p>Hint one</p>" {
			t.Errorf("unexpected hint %q", entries[0].HintHTML)
		}
		if entries[1].Link != "https://example.com/2" {
			t.Errorf("link not trimmed: %q", entries[1].Link)
		}
	}
}

func TestRSSSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.Write([]byte("this is not a feed"))
			return
		}
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	src := NewRSSSource(time.Second)
	for _, ref := range []string{srv.URL + "/gone", srv.URL + "/broken", filepath.Join(t.TempDir(), "missing.xml")} {
		if _, err := src.Fetch(context.Background(), ref); err == nil {
			t.Errorf("Fetch(%s): expected error", ref)
		}
	}
}
