package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type messages struct {
	Title           string
	Prompt          string
	Submit          string
	EnterSentence   string
	TextTooLong     string
	ErrorPrefix     string
	SentimentLabel  string
	OriginalLabel   string
	TranslatedLabel string
	ReportIncorrect string
	FeedbackThanks  string
}

var localizedMessages = map[string]messages{
	"en": {
		Title:           "Sentiment Analysis",
		Prompt:          "Enter a sentence in any language",
		Submit:          "Analyze",
		EnterSentence:   "Please enter a sentence.",
		TextTooLong:     "The text is too long: %d characters maximum.",
		ErrorPrefix:     "Error: ",
		SentimentLabel:  "Sentiment",
		OriginalLabel:   "Original text",
		TranslatedLabel: "Translated text",
		ReportIncorrect: "This prediction is incorrect",
		FeedbackThanks:  "Thank you, your feedback has been recorded.",
	},
	"fr": {
		Title:           "Analyse de sentiment",
		Prompt:          "Entrez une phrase dans n'importe quelle langue",
		Submit:          "Analyser",
		EnterSentence:   "Veuillez entrer une phrase.",
		TextTooLong:     "Le texte est trop long : %d caractères maximum.",
		ErrorPrefix:     "Erreur : ",
		SentimentLabel:  "Sentiment",
		OriginalLabel:   "Texte original",
		TranslatedLabel: "Texte traduit",
		ReportIncorrect: "Cette prédiction est incorrecte",
		FeedbackThanks:  "Merci, votre retour a été enregistré.",
	},
}

func messagesFor(locale string) messages {
	if m, ok := localizedMessages[locale]; ok {
		return m
	}
	return localizedMessages["en"]
}

// IndexView is the data rendered by templates/index.html. A non-empty
// Sentiment means a completed prediction; FeedbackReceived with an empty
// Sentiment acknowledges a flagged prediction.
type IndexView struct {
	Lang      string
	Messages  messages
	MaxLength int

	Sentiment        string
	InputText        string
	TranslatedText   string
	Error            string
	FeedbackReceived bool
}

func (v *IndexView) setError(msg string) {
	v.Sentiment = ""
	v.InputText = ""
	v.TranslatedText = ""
	v.Error = msg
}

func (v *IndexView) textTooLong() string {
	return fmt.Sprintf(v.Messages.TextTooLong, v.MaxLength)
}

// renderIndex always answers 200 once the template executes.
func renderIndex(w http.ResponseWriter, view IndexView) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, view); err != nil {
		slog.Error("error rendering index template", "error", err)
		http.Error(w, "error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("error writing page", "error", err)
	}
}
