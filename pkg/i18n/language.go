// Package i18n provides language definitions and report labels.
// Language names follow the Snowball stemmer naming so one value
// configures stemming, stop-words, sentence rules and report text.
package i18n

import (
	"fmt"
	"strings"
)

// Language represents a supported summarization language.
type Language string

const (
	LangFR Language = "french"  // default
	LangEN Language = "english" // English
)

// AllLanguages is the list of all supported languages.
var AllLanguages = []Language{LangFR, LangEN}

// LanguageName returns the human-readable display name of a language.
func LanguageName(lang Language) string {
	switch lang {
	case LangFR:
		return "Français"
	case LangEN:
		return "English"
	default:
		return string(lang)
	}
}

// IsValidLanguage checks if a language is supported.
func IsValidLanguage(lang string) bool {
	for _, l := range AllLanguages {
		if Language(lang) == l {
			return true
		}
	}
	return false
}

// ParseLanguage normalizes s ("French", "fr", "english", "en") into a Language.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fr", "french", "français", "francais":
		return LangFR, nil
	case "en", "english":
		return LangEN, nil
	default:
		return "", fmt.Errorf("unsupported language %q (supported: %v)", s, AllLanguages)
	}
}

// AcceptLanguage returns the Accept-Language header a desktop browser
// configured for lang would send.
func AcceptLanguage(lang Language) string {
	switch lang {
	case LangEN:
		return "en-US,en;q=0.9"
	default:
		return "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"
	}
}
