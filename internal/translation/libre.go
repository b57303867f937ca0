package translation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// LibreTranslator talks to a self hosted LibreTranslate instance.
type LibreTranslator struct {
	client *resty.Client
	apiKey string
}

func NewLibreTranslator(baseURL, apiKey string, timeout time.Duration) *LibreTranslator {
	return &LibreTranslator{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	ApiKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type libreErrorResponse struct {
	Error string `json:"error"`
}

func (l *LibreTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var result libreTranslateResponse
	var failure libreErrorResponse

	res, err := l.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(libreTranslateRequest{
			Q:      text,
			Source: sourceLang,
			Target: targetLang,
			Format: "text",
			ApiKey: l.apiKey,
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/translate")

	if err != nil {
		return "", fmt.Errorf("libretranslate request failed: %w", err)
	}

	if !res.IsSuccess() {
		slog.Error("libretranslate returned error", "status_code", res.StatusCode(), "error", failure.Error)
		return "", fmt.Errorf("libretranslate returned status %d: %s", res.StatusCode(), failure.Error)
	}

	return result.TranslatedText, nil
}
