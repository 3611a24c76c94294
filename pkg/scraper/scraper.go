// Package scraper provides HTTP content fetching and main-text extraction.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	browserAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Strategy identifies which download attempt produced a payload.
type Strategy int

const (
	StrategyNone    Strategy = iota // nothing downloaded
	StrategyDirect                  // plain GET, no custom headers
	StrategyBrowser                 // GET with desktop browser headers
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyBrowser:
		return "browser"
	default:
		return "none"
	}
}

// FetchOptions configures the behavior of an HTTPFetcher.
type FetchOptions struct {
	Timeout              time.Duration `yaml:"timeout"`
	MaxBodySize          int64         `yaml:"max_body_size"`
	AcceptLanguage       string        `yaml:"accept_language"`
	RequestsPerSecond    float64       `yaml:"requests_per_second"`
	BlockPrivateNetworks bool          `yaml:"block_private_networks"`
}

// DefaultFetchOptions returns sensible defaults for fetching.
func DefaultFetchOptions() *FetchOptions {
	return &FetchOptions{
		Timeout:        20 * time.Second,
		MaxBodySize:    5 << 20,
		AcceptLanguage: "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}

// Result holds the outcome of fetching one article. An empty Text means
// "no content"; it is not an error.
type Result struct {
	URL      string        `json:"url"`
	Text     string        `json:"text"`
	Strategy Strategy      `json:"strategy"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether any text was extracted.
func (r Result) OK() bool { return r.Text != "" }

// Fetcher defines the interface for fetching article text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) Result
}

// HTTPFetcher implements Fetcher with two fixed download strategies
// followed by main-content extraction.
type HTTPFetcher struct {
	client  *http.Client
	opts    FetchOptions
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHTTPFetcher creates a new HTTP-based fetcher.
func NewHTTPFetcher(opts *FetchOptions) *HTTPFetcher {
	if opts == nil {
		opts = DefaultFetchOptions()
	}

	var client *http.Client
	if opts.BlockPrivateNetworks {
		cfg := safeurl.GetConfigBuilder().
			SetTimeout(opts.Timeout).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		client = safeurl.Client(cfg).Client
	} else {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return NewHTTPFetcherWithClient(client, opts)
}

// NewHTTPFetcherWithClient creates a fetcher around a caller-supplied client.
func NewHTTPFetcherWithClient(client *http.Client, opts *FetchOptions) *HTTPFetcher {
	if opts == nil {
		opts = DefaultFetchOptions()
	}
	f := &HTTPFetcher{
		client: client,
		opts:   *opts,
		logger: slog.Default(),
	}
	if f.opts.MaxBodySize <= 0 {
		f.opts.MaxBodySize = DefaultFetchOptions().MaxBodySize
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// Fetch downloads url and extracts its main text. The direct strategy runs
// first; the browser strategy only runs when the direct one produced no
// payload. A non-2xx answer to the browser strategy ends the attempt.
// Fetch never fails: every error becomes an empty Result.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) Result {
	start := time.Now()
	result := Result{URL: url}

	payload, err := f.download(ctx, url, nil)
	if err == nil && payload != "" {
		result.Strategy = StrategyDirect
	} else {
		f.logger.Debug("direct download failed", "url", url, "error", err)

		payload, err = f.download(ctx, url, f.browserHeaders())
		if err != nil || payload == "" {
			f.logger.Debug("browser download failed", "url", url, "error", err)
			result.Duration = time.Since(start)
			return result
		}
		result.Strategy = StrategyBrowser
	}

	result.Text = ExtractMainText(payload, url)
	result.Duration = time.Since(start)
	return result
}

func (f *HTTPFetcher) browserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", browserUserAgent)
	h.Set("Accept", browserAccept)
	if f.opts.AcceptLanguage != "" {
		h.Set("Accept-Language", f.opts.AcceptLanguage)
	}
	return h
}

// download performs one GET. Non-2xx statuses are errors.
func (f *HTTPFetcher) download(ctx context.Context, url string, headers http.Header) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.opts.MaxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
