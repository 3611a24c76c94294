package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/pipeline"
	"github.com/RobinCoderZhao/alert-digest/internal/alertdigest/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "alertdigest ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRunWithoutFeedsFails(t *testing.T) {
	t.Setenv("FEEDS", "")
	dir := t.TempDir()
	_, err := execute(t, "run", "--config", filepath.Join(dir, "none.yaml"), "--output", dir)
	if !errors.Is(err, pipeline.ErrNoFeeds) {
		t.Fatalf("expected ErrNoFeeds, got %v", err)
	}
}

func TestRunInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run", "--config", filepath.Join(dir, "none.yaml"), "--output", dir, "--feeds", "x.xml", "--sentences", "0")
	if err == nil || !strings.Contains(err.Error(), "sentences") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunThenHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	feed := filepath.Join(dir, "alerts.xml")
	rss := fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>alerts</title>
<item><title>Premier article</title><link>%s/a</link><description>Le premier article parle du climat.</description></item>
<item><title>Second article</title><link>%s/b</link></item>
</channel></rss>`, srv.URL, srv.URL)
	if err := os.WriteFile(feed, []byte(rss), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "run", "--config", filepath.Join(dir, "none.yaml"), "--output", dir, "--feeds", feed, "--timeout", "2")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Articles: 2") {
		t.Fatalf("unexpected console summary:\n%s", out)
	}

	out, err = execute(t, "history", "--config", filepath.Join(dir, "none.yaml"), "--output", dir, "--json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []store.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("history output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 2 || entries[0].Title != "Second article" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if entries[1].Summary != "- Le premier article parle du climat." {
		t.Errorf("unexpected summary %q", entries[1].Summary)
	}
}
