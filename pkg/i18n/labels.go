package i18n

// Labels holds the localized strings used in rendered reports.
type Labels struct {
	DailyTitle   string // format verb receives the report date
	HistoryTitle string
	NoArticles   string
	Untitled     string
	Unavailable  string // summary marker when no text could be summarized
	EmptySummary string // marker used by the renderer for blank summaries
	Source       string
	Published    string
}

var labels = map[Language]Labels{
	LangFR: {
		DailyTitle:   "Résumé Google Alerts – %s",
		HistoryTitle: "Historique complet Google Alerts",
		NoArticles:   "_Aucun nouvel article._",
		Untitled:     "(Sans titre)",
		Unavailable:  "- (Résumé indisponible – texte non détecté).",
		EmptySummary: "- (Résumé indisponible).",
		Source:       "Source",
		Published:    "Publié",
	},
	LangEN: {
		DailyTitle:   "Google Alerts digest – %s",
		HistoryTitle: "Google Alerts full history",
		NoArticles:   "_No new articles._",
		Untitled:     "(Untitled)",
		Unavailable:  "- (Summary unavailable – no text detected).",
		EmptySummary: "- (Summary unavailable).",
		Source:       "Source",
		Published:    "Published",
	},
}

// GetLabels returns the labels for lang, falling back to French.
func GetLabels(lang Language) Labels {
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[LangFR]
}
