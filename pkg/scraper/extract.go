package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// noiseSelectors are removed before main-content extraction: tables,
// comment threads, forms and page chrome never belong in a summary.
var noiseSelectors = strings.Join([]string{
	"table", "form", "nav", "footer", "aside", "noscript", "iframe",
	"#comments", ".comments", "#respond", ".comment-list", "#disqus_thread",
	"[role=complementary]", "[role=navigation]",
}, ", ")

// ExtractMainText returns the main article text of rawHTML as plain text,
// one paragraph per line. It returns "" when nothing could be extracted.
func ExtractMainText(rawHTML, pageURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelectors).Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return ""
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), base)
	if err != nil {
		return ""
	}
	if article.Node == nil {
		return NormalizeText(article.TextContent)
	}
	var sb strings.Builder
	writeBlockText(article.Node, &sb)
	return NormalizeText(sb.String())
}

// blockTags end a line when rendered to text, so paragraphs stay apart even
// when the markup has no whitespace between them.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"article": true, "section": true, "header": true, "figcaption": true,
	"pre": true, "tr": true, "dd": true, "dt": true, "hr": true,
}

func writeBlockText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
		if blockTags[n.Data] {
			sb.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(c, sb)
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteString("\n")
	}
}

// NormalizeText collapses whitespace inside each line and drops blank lines.
func NormalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// HTMLToText converts an HTML fragment (a feed summary, typically) into a
// single line of plain text. Script, style and noscript content is dropped.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var parts []string
	collectText(doc, &parts, map[string]bool{
		"script": true, "style": true, "noscript": true,
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(n *html.Node, parts *[]string, skipTags map[string]bool) {
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts, skipTags)
	}
}
