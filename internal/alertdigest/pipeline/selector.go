package pipeline

import "strings"

// TextSource names the input a summary was built from.
type TextSource string

const (
	SourceFull  TextSource = "full"
	SourceHint  TextSource = "hint"
	SourceTitle TextSource = "title"
	SourceNone  TextSource = "none"
)

// Selection is the text chosen for summarization.
type Selection struct {
	Text   string
	Source TextSource
}

// Select picks the first non-blank text among the extracted article, the
// feed hint and the title.
func Select(full, hint, title string) Selection {
	switch {
	case strings.TrimSpace(full) != "":
		return Selection{Text: full, Source: SourceFull}
	case strings.TrimSpace(hint) != "":
		return Selection{Text: hint, Source: SourceHint}
	case strings.TrimSpace(title) != "":
		return Selection{Text: title, Source: SourceTitle}
	default:
		return Selection{Source: SourceNone}
	}
}
