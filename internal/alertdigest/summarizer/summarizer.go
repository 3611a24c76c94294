// Package summarizer produces extractive summaries by ranking sentences on
// a term-similarity graph (TextRank) and keeping the most central ones.
package summarizer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

// Tier records how a summary was obtained.
type Tier string

const (
	TierRanked Tier = "ranked" // TextRank selection
	TierLead   Tier = "lead"   // ranking failed, leading sentences kept
	TierEmpty  Tier = "empty"  // no sentence available
)

// Summary is the result of summarizing one text.
type Summary struct {
	Sentences []string `json:"sentences"`
	Tier      Tier     `json:"tier"`
}

// Empty reports whether the summary holds no sentence.
func (s Summary) Empty() bool { return len(s.Sentences) == 0 }

// Summarizer ranks sentences for a single language.
type Summarizer struct {
	lang      i18n.Language
	stopWords map[string]bool
	logger    *slog.Logger
}

// New creates a summarizer for lang.
func New(lang i18n.Language) (*Summarizer, error) {
	if !i18n.IsValidLanguage(string(lang)) {
		return nil, fmt.Errorf("unsupported summarizer language: %s", lang)
	}
	return &Summarizer{
		lang:      lang,
		stopWords: StopWords(lang),
		logger:    slog.Default(),
	}, nil
}

// Language returns the configured language.
func (s *Summarizer) Language() i18n.Language { return s.lang }

// Summarize returns at most k sentences of text in their original order.
// For n sentences it returns min(k, n) of them. When ranking is impossible
// the first k sentences are kept instead (TierLead).
func (s *Summarizer) Summarize(text string, k int) Summary {
	if k <= 0 {
		return Summary{Tier: TierEmpty}
	}
	sentences := SplitSentences(text, s.lang)
	if len(sentences) == 0 {
		return Summary{Tier: TierEmpty}
	}

	terms := make([][]string, len(sentences))
	for i, sent := range sentences {
		terms[i] = s.terms(sent)
	}

	var picked []string
	tier := TierRanked
	scores, err := rankSentences(terms)
	if err != nil {
		s.logger.Debug("ranking failed, keeping leading sentences", "error", err, "sentences", len(sentences))
		tier = TierLead
		picked = sentences[:min(k, len(sentences))]
	} else {
		for _, idx := range topIndices(scores, k) {
			picked = append(picked, sentences[idx])
		}
	}

	out := make([]string, 0, len(picked))
	for _, sent := range picked {
		if c := CleanSentence(sent); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return Summary{Tier: TierEmpty}
	}
	return Summary{Sentences: out, Tier: tier}
}

// terms returns the stemmed, stop-word-free words of a sentence.
func (s *Summarizer) terms(sentence string) []string {
	words := Words(sentence)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if s.stopWords[w] {
			continue
		}
		stem, err := snowball.Stem(w, string(s.lang), true)
		if err != nil || stem == "" {
			stem = w
		}
		out = append(out, stem)
	}
	return out
}

// CleanSentence collapses inner whitespace and trims surrounding spaces
// and periods.
func CleanSentence(s string) string {
	return strings.Trim(strings.Join(strings.Fields(s), " "), " .")
}

// FormatBullets renders sentences as "- sentence." lines. It returns ""
// for an empty list; callers substitute their own unavailable marker.
func FormatBullets(sentences []string) string {
	lines := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = CleanSentence(s); s != "" {
			lines = append(lines, "- "+s+".")
		}
	}
	return strings.Join(lines, "\n")
}
