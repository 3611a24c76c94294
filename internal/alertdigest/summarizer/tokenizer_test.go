package summarizer

import (
	"reflect"
	"testing"

	"github.com/RobinCoderZhao/alert-digest/pkg/i18n"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		lang i18n.Language
		text string
		want []string
	}{
		{
			name: "french title abbreviation",
			lang: i18n.LangFR,
			text: "M. Dupont est arrivé. Il a parlé.",
			want: []string{"M. Dupont est arrivé.", "Il a parlé."},
		},
		{
			name: "decimal number",
			lang: i18n.LangFR,
			text: "Le prix atteint 3.5 euros. Il baisse ensuite.",
			want: []string{"Le prix atteint 3.5 euros.", "Il baisse ensuite."},
		},
		{
			name: "spaced french punctuation",
			lang: i18n.LangFR,
			text: "Quoi ? Oui !",
			want: []string{"Quoi ?", "Oui !"},
		},
		{
			name: "english honorific",
			lang: i18n.LangEN,
			text: "Dr. Smith met Mr. Jones. They talked.",
			want: []string{"Dr. Smith met Mr. Jones.", "They talked."},
		},
		{
			name: "dotted acronym",
			lang: i18n.LangEN,
			text: "The U.S. Senate voted. Markets rallied.",
			want: []string{"The U.S. Senate voted.", "Markets rallied."},
		},
		{
			name: "lowercase continuation",
			lang: i18n.LangEN,
			text: "See example.com for details. it continues here.",
			want: []string{"See example.com for details. it continues here."},
		},
		{
			name: "closing quote",
			lang: i18n.LangFR,
			text: "Il a dit \"non.\" Puis il est parti.",
			want: []string{"Il a dit \"non.\"", "Puis il est parti."},
		},
		{
			name: "spaced closing guillemet",
			lang: i18n.LangFR,
			text: "Il a dit « Bonjour. » Puis il est parti.",
			want: []string{"Il a dit « Bonjour. »", "Puis il est parti."},
		},
		{
			name: "glued paragraphs",
			lang: i18n.LangFR,
			text: "Le premier paragraphe parle de sécurité.Le second paragraphe parle d'attaque.",
			want: []string{"Le premier paragraphe parle de sécurité.", "Le second paragraphe parle d'attaque."},
		},
		{
			name: "glued abbreviation kept",
			lang: i18n.LangEN,
			text: "Use e.g.This form. Done.",
			want: []string{"Use e.g.This form.", "Done."},
		},
		{
			name: "line breaks end sentences",
			lang: i18n.LangEN,
			text: "Headline without period\nBody sentence here.",
			want: []string{"Headline without period", "Body sentence here."},
		},
		{
			name: "punctuation only fragments dropped",
			lang: i18n.LangEN,
			text: "Real sentence.\n...\n---",
			want: []string{"Real sentence."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, tt.lang)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWords(t *testing.T) {
	got := Words("L'économie française, en 2024 : +3%!")
	want := []string{"l", "économie", "française", "en", "2024", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Words() = %q, want %q", got, want)
	}
}

func TestTopIndices(t *testing.T) {
	got := topIndices([]float64{0.1, 0.5, 0.5, 0.3}, 2)
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("got %v", got)
	}
	got = topIndices([]float64{0.2, 0.2, 0.2}, 2)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("ties should favor earlier sentences, got %v", got)
	}
}

func TestRankSentencesDegenerate(t *testing.T) {
	if _, err := rankSentences([][]string{{}, {}}); err != ErrDegenerate {
		t.Fatalf("expected ErrDegenerate, got %v", err)
	}
}
