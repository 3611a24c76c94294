package summarizer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

func newSummarizer(t *testing.T, lang i18n.Language) *Summarizer {
	t.Helper()
	s, err := New(lang)
	if err != nil {
		t.Fatalf("New(%s): %v", lang, err)
	}
	return s
}

func TestNewRejectsUnknownLanguage(t *testing.T) {
	if _, err := New("klingon"); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestSummarizePicksCentralSentences(t *testing.T) {
	s := newSummarizer(t, i18n.LangEN)
	text := "The cat chased the mouse. Stock markets fell sharply today. A cat and a mouse played."

	got := s.Summarize(text, 2)
	want := []string{"The cat chased the mouse", "A cat and a mouse played"}
	if got.Tier != TierRanked {
		t.Fatalf("expected ranked tier, got %s", got.Tier)
	}
	if !reflect.DeepEqual(got.Sentences, want) {
		t.Fatalf("got %q, want %q", got.Sentences, want)
	}
}

func TestSummarizeFewerSentencesThanRequested(t *testing.T) {
	s := newSummarizer(t, i18n.LangEN)
	got := s.Summarize("Rain is expected tomorrow. Farmers welcome the rain.", 4)
	if len(got.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %q", len(got.Sentences), got.Sentences)
	}
	if got.Sentences[0] != "Rain is expected tomorrow" {
		t.Errorf("order not preserved: %q", got.Sentences)
	}
}

func TestSummarizeGluedParagraphs(t *testing.T) {
	s := newSummarizer(t, i18n.LangFR)
	got := s.Summarize("Le premier paragraphe parle de sécurité.Le second paragraphe parle d'attaque.", 4)
	if len(got.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %q", len(got.Sentences), got.Sentences)
	}
}

func TestSummarizeBoundAndOrder(t *testing.T) {
	s := newSummarizer(t, i18n.LangFR)
	text := strings.Join([]string{
		"Le gouvernement présente un nouveau budget pour l'éducation.",
		"Les syndicats critiquent le budget de l'éducation nationale.",
		"La météo annonce du soleil sur la côte.",
		"Le ministre défend le budget devant les députés.",
		"Les députés voteront le budget la semaine prochaine.",
		"Un festival de musique ouvre ses portes à Lyon.",
	}, " ")
	sentences := SplitSentences(text, i18n.LangFR)
	if len(sentences) != 6 {
		t.Fatalf("expected 6 sentences, got %d: %q", len(sentences), sentences)
	}

	for k := 1; k <= 7; k++ {
		got := s.Summarize(text, k)
		if len(got.Sentences) != min(k, 6) {
			t.Fatalf("k=%d: got %d sentences", k, len(got.Sentences))
		}
		last := -1
		for _, sent := range got.Sentences {
			pos := strings.Index(text, sent)
			if pos < 0 {
				t.Fatalf("k=%d: %q is not a sentence of the input", k, sent)
			}
			if pos <= last {
				t.Fatalf("k=%d: sentences out of order: %q", k, got.Sentences)
			}
			last = pos
		}
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	s := newSummarizer(t, i18n.LangFR)
	text := "Paris accueille le sommet. Le sommet réunit vingt pays. Les pays discutent du climat. Le climat inquiète Paris."
	first := s.Summarize(text, 2)
	for i := 0; i < 5; i++ {
		if got := s.Summarize(text, 2); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %q vs %q", i, got.Sentences, first.Sentences)
		}
	}
}

func TestSummarizeStopWordsOnlyFallsBackToLead(t *testing.T) {
	s := newSummarizer(t, i18n.LangEN)
	got := s.Summarize("It is what it is.\nThey were there.", 1)
	if got.Tier != TierLead {
		t.Fatalf("expected lead tier, got %s", got.Tier)
	}
	if !reflect.DeepEqual(got.Sentences, []string{"It is what it is"}) {
		t.Fatalf("unexpected sentences %q", got.Sentences)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := newSummarizer(t, i18n.LangFR)
	for _, text := range []string{"", "   ", "... !!", "\n\n"} {
		got := s.Summarize(text, 4)
		if !got.Empty() || got.Tier != TierEmpty {
			t.Errorf("Summarize(%q) = %+v, want empty", text, got)
		}
	}
	if got := s.Summarize("Une phrase.", 0); !got.Empty() {
		t.Errorf("k=0 should give empty summary, got %q", got.Sentences)
	}
}

func TestSummarizeTitleOnly(t *testing.T) {
	s := newSummarizer(t, i18n.LangFR)
	got := s.Summarize("Inflation : la BCE maintient ses taux", 4)
	if !reflect.DeepEqual(got.Sentences, []string{"Inflation : la BCE maintient ses taux"}) {
		t.Fatalf("unexpected sentences %q", got.Sentences)
	}
}

func TestFormatBullets(t *testing.T) {
	got := FormatBullets([]string{"First  sentence.", " second one ", "..."})
	want := "- First sentence.\n- second one."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if FormatBullets(nil) != "" {
		t.Fatal("expected empty string for no sentences")
	}
}
