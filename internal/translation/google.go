package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultGoogleURL = "https://translate.googleapis.com"

// GoogleTranslator calls the public translate_a/single endpoint used by the
// google web client.
type GoogleTranslator struct {
	client *resty.Client
}

func NewGoogleTranslator(baseURL string, timeout time.Duration) *GoogleTranslator {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &GoogleTranslator{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	res, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     sourceLang,
			"tl":     targetLang,
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")

	if err != nil {
		return "", fmt.Errorf("google translate request failed: %w", err)
	}

	if !res.IsSuccess() {
		slog.Error("google translate returned error", "status_code", res.StatusCode(), "body", res.String())
		return "", fmt.Errorf("google translate returned status %d", res.StatusCode())
	}

	return parseGoogleResponse(res.Body())
}

// parseGoogleResponse joins the translated segments of a response shaped like
// [[["translated","original",...],...],null,"fr",...].
func parseGoogleResponse(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("error parsing google translate response: %w", err)
	}

	if len(payload) == 0 {
		return "", fmt.Errorf("unexpected google translate response: empty payload")
	}

	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected google translate response: missing segments")
	}

	var out strings.Builder
	for _, segment := range segments {
		parts, ok := segment.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			out.WriteString(s)
		}
	}

	return out.String(), nil
}
