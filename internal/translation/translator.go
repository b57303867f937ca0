package translation

import (
	"context"
	"errors"
	"log/slog"
)

const (
	AutoDetect = "auto"
	English    = "en"
)

var ErrEmptyTranslation = errors.New("provider returned an empty translation")

// Provider is an external translation service. Implementations may fail.
type Provider interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

type Result struct {
	Original   string
	Translated string
	// Success is false when Translated fell back to Original.
	Success bool
}

// Adapter translates to english and never fails: on any provider error the
// original text is returned unchanged.
type Adapter struct {
	provider Provider
}

func NewAdapter(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

func (a *Adapter) ToEnglish(ctx context.Context, text string) Result {
	if text == "" {
		return Result{Original: text, Translated: text}
	}

	translated, err := a.provider.Translate(ctx, text, AutoDetect, English)
	if err == nil && translated == "" {
		err = ErrEmptyTranslation
	}
	if err != nil {
		slog.Warn("translation failed, using original text", "text_length", len(text), "error", err)
		return Result{Original: text, Translated: text}
	}

	return Result{Original: text, Translated: translated, Success: true}
}

// NoopProvider returns its input, used when translation is disabled.
type NoopProvider struct{}

func (NoopProvider) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}
