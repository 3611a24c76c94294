package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

// abbreviations lists lowercase words that end with a period without ending
// a sentence. Single letters (initials) are handled separately.
var abbreviations = map[i18n.Language]map[string]bool{
	i18n.LangFR: setOf(
		"m", "mm", "mme", "mmes", "mlle", "mlles", "dr", "pr", "me", "st", "ste",
		"cf", "av", "bd", "env", "ex", "fig", "p", "pp", "vol", "art", "chap",
		"éd", "coll", "janv", "févr", "avr", "juil", "sept", "oct", "nov", "déc",
		"no", "n°", "tél", "min", "max", "approx", "hab",
	),
	i18n.LangEN: setOf(
		"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "vs", "inc", "ltd",
		"co", "corp", "jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep",
		"sept", "oct", "nov", "dec", "no", "fig", "gen", "gov", "sen", "rep",
		"approx", "dept", "est", "mt",
	),
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// SplitSentences splits text into sentences using lang's abbreviation rules.
// Line breaks always end a sentence. Fragments without any letter or digit
// are dropped.
func SplitSentences(text string, lang i18n.Language) []string {
	abbrev := abbreviations[lang]
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = splitLine([]rune(line), abbrev, out)
	}
	return out
}

func splitLine(runes []rune, abbrev map[string]bool, out []string) []string {
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := skipClosers(runes, i+1)
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			if gluedBoundary(runes, start, i, end, abbrev) {
				// "quotidiens.Le second"
				out = appendSentence(out, string(runes[start:end]))
				start = end
				i = end - 1
				continue
			}
			// "3.5", "example.com", "?!x"
			i = end - 1
			continue
		}
		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next < len(runes) {
			if !startsSentence(runes[next]) || (runes[i] == '.' && endsWithAbbreviation(runes[start:i], abbrev)) {
				i = end - 1
				continue
			}
		}
		out = appendSentence(out, string(runes[start:end]))
		start = next
		i = next - 1
	}
	if start < len(runes) {
		out = appendSentence(out, string(runes[start:]))
	}
	return out
}

// skipClosers advances past terminal punctuation and closing quotes,
// including a French guillemet set off by spaces ("Bonjour. »").
func skipClosers(runes []rune, end int) int {
	for {
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		k := end
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k == end || k >= len(runes) || runes[k] != '»' {
			return end
		}
		end = k + 1
	}
}

// gluedBoundary reports whether a period with no following space still ends
// a sentence: a lowercase word runs straight into a capitalized one, as
// happens when block elements are flattened without separators.
func gluedBoundary(runes []rune, start, i, end int, abbrev map[string]bool) bool {
	if runes[i] != '.' || end != i+1 || i == 0 || end+1 >= len(runes) {
		return false
	}
	if !unicode.IsLower(runes[i-1]) || !unicode.IsUpper(runes[end]) || !unicode.IsLower(runes[end+1]) {
		return false
	}
	return !endsWithAbbreviation(runes[start:i], abbrev)
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if strings.IndexFunc(s, isWordRune) < 0 {
		return out
	}
	return append(out, s)
}

// endsWithAbbreviation reports whether the word right before a period is
// an abbreviation, an initial or a dotted acronym ("U.S", "J.-C").
func endsWithAbbreviation(prefix []rune, abbrev map[string]bool) bool {
	j := len(prefix)
	for j > 0 && !unicode.IsSpace(prefix[j-1]) {
		j--
	}
	word := strings.ToLower(strings.TrimLeft(string(prefix[j:]), "\"'«“‘(["))
	if word == "" {
		return false
	}
	if abbrev[word] {
		return true
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsLetter(r)
	}
	if strings.Contains(word, ".") {
		for _, seg := range strings.Split(word, ".") {
			if utf8.RuneCountInString(strings.Trim(seg, "-")) > 2 {
				return false
			}
		}
		return true
	}
	return false
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	return strings.ContainsRune("\"'»”’)]", r)
}

func startsSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'«“‘([¿¡-–—", r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words returns the lowercase word tokens of a sentence. Apostrophes and
// hyphens separate words ("l'économie" gives "l", "économie").
func Words(sentence string) []string {
	return strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !isWordRune(r)
	})
}
