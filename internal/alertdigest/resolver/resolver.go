// Package resolver extracts the real article URL from alert redirect links.
package resolver

import (
	"net/url"
	"strings"
)

// targetKeys are the redirect parameters checked, in order.
var targetKeys = []string{"url", "q"}

// Resolve returns the article URL wrapped in a redirect or tracking link.
// The query string is inspected first (url, then q), then the fragment with
// the same keys; the first non-empty decoded value wins. Anything else,
// including unparseable input, returns rawLink unchanged.
func Resolve(rawLink string) string {
	u, err := url.Parse(strings.TrimSpace(rawLink))
	if err != nil {
		return rawLink
	}

	if v := firstValue(u.RawQuery); v != "" {
		return v
	}
	if v := firstValue(u.EscapedFragment()); v != "" {
		return v
	}
	return rawLink
}

// firstValue looks up targetKeys in an encoded query. Malformed pairs are
// skipped; url.ParseQuery still returns everything it could decode.
func firstValue(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	values, _ := url.ParseQuery(rawQuery)
	for _, key := range targetKeys {
		for _, v := range values[key] {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Domain returns the host of rawURL without a leading "www.", or "" when
// rawURL has no host.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
