package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sentiment-backend/internal/feedback"
	"sentiment-backend/internal/translation"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const DefaultMaxTextLength = 500

var (
	ErrTextRequired = errors.New("text is required")
	ErrTextTooLong  = errors.New("text is too long")
)

type ValidationError struct {
	Err       error
	MaxLength int
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrTextTooLong) {
		return fmt.Sprintf("%v (maximum %d characters)", e.Err, e.MaxLength)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

type Translator interface {
	ToEnglish(ctx context.Context, text string) translation.Result
}

type Analysis struct {
	OriginalText   string
	TranslatedText string
	Prediction     []int
	Sentiment      Sentiment
}

type Pipeline struct {
	translator    Translator
	classifier    Classifier
	sink          feedback.Sink
	maxTextLength int
}

func NewPipeline(translator Translator, classifier Classifier, sink feedback.Sink, maxTextLength int) *Pipeline {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}
	return &Pipeline{
		translator:    translator,
		classifier:    classifier,
		sink:          sink,
		maxTextLength: maxTextLength,
	}
}

func (p *Pipeline) MaxTextLength() int {
	return p.maxTextLength
}

// Validate applies the length check before the emptiness check. Length is
// counted in code points.
func (p *Pipeline) Validate(text string) error {
	if utf8.RuneCountInString(text) > p.maxTextLength {
		return &ValidationError{Err: ErrTextTooLong, MaxLength: p.maxTextLength}
	}
	if text == "" {
		return &ValidationError{Err: ErrTextRequired, MaxLength: p.maxTextLength}
	}
	return nil
}

// Predict translates and classifies text without validating it. Only
// classifier failures are returned, wrapped in an InferenceError.
func (p *Pipeline) Predict(ctx context.Context, text string) (Analysis, error) {
	translated := p.translator.ToEnglish(ctx, text)

	prediction, err := p.classifier.Predict(ctx, []string{translated.Translated})
	if err != nil {
		return Analysis{}, &InferenceError{Err: err}
	}
	if len(prediction) == 0 {
		return Analysis{}, &InferenceError{Err: fmt.Errorf("model returned no prediction")}
	}

	return Analysis{
		OriginalText:   text,
		TranslatedText: translated.Translated,
		Prediction:     prediction,
	}, nil
}

// Analyze is the validated path used by the form endpoint; the first class
// index is mapped to its sentiment.
func (p *Pipeline) Analyze(ctx context.Context, text string) (Analysis, error) {
	if err := p.Validate(text); err != nil {
		return Analysis{}, err
	}

	analysis, err := p.Predict(ctx, text)
	if err != nil {
		return Analysis{}, err
	}

	sentiment, err := SentimentForClass(analysis.Prediction[0])
	if err != nil {
		return Analysis{}, &InferenceError{Err: err}
	}
	analysis.Sentiment = sentiment

	return analysis, nil
}

// ReportIncorrect hands a feedback event for analysis to the sink. Sink
// failures are logged and never returned.
func (p *Pipeline) ReportIncorrect(ctx context.Context, analysis Analysis, attributes map[string]string) {
	event := feedback.Event{
		Id:             uuid.New(),
		Text:           analysis.TranslatedText,
		OriginalText:   analysis.OriginalText,
		PredictedLabel: analysis.Sentiment.String(),
		Timestamp:      time.Now().UTC(),
		Attributes:     attributes,
	}

	if err := p.sink.Record(ctx, event); err != nil {
		slog.Error("error recording feedback event", "event_id", event.Id, "error", err)
		return
	}

	slog.Info("recorded incorrect prediction feedback", "event_id", event.Id, "predicted_label", event.PredictedLabel)
}
