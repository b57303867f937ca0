package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	backend "sentiment-backend/internal/api"
	"sentiment-backend/internal/core"
	"sentiment-backend/internal/feedback"
	"sentiment-backend/internal/translation"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	translated string
	err        error
	calls      int
}

func (m *mockProvider) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.translated, nil
}

type mockClassifier struct {
	prediction []int
	err        error
	calls      int
	inputs     [][]string
}

func (m *mockClassifier) Predict(_ context.Context, texts []string) ([]int, error) {
	m.calls++
	m.inputs = append(m.inputs, texts)
	return m.prediction, m.err
}

func (m *mockClassifier) Release() {}

type mockSink struct {
	mu     sync.Mutex
	events []feedback.Event
}

func (m *mockSink) Record(_ context.Context, event feedback.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

type testService struct {
	provider   *mockProvider
	classifier *mockClassifier
	sink       *mockSink
	router     chi.Router
}

func newTestService(t *testing.T, locale string, provider *mockProvider, classifier *mockClassifier) *testService {
	t.Helper()

	sink := &mockSink{}
	pipeline := core.NewPipeline(translation.NewAdapter(provider), classifier, sink, 500)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	backend.NewSentimentService(pipeline, locale).AddRoutes(router)

	return &testService{provider: provider, classifier: classifier, sink: sink, router: router}
}

func (s *testService) postForm(values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testService) postJSON(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{}, &mockClassifier{})

	rec := httptest.NewRecorder()
	service.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `<form method="post" action="/">`)
	assert.NotContains(t, rec.Body.String(), `id="error"`)
	assert.NotContains(t, rec.Body.String(), `id="sentiment"`)
}

func TestHealth(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{}, &mockClassifier{})

	rec := httptest.NewRecorder()
	service.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestAnalyzeTextTooLong(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "x"}, &mockClassifier{prediction: []int{0}})

	rec := service.postForm(url.Values{"text": {strings.Repeat("é", 501)}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The text is too long: 500 characters maximum.")
	assert.NotContains(t, rec.Body.String(), `id="sentiment"`)
	assert.Equal(t, 0, service.provider.calls)
	assert.Equal(t, 0, service.classifier.calls)
}

func TestAnalyzeTextAtLimit(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "fine"}, &mockClassifier{prediction: []int{0}})

	rec := service.postForm(url.Values{"text": {strings.Repeat("é", 500)}})

	assert.Contains(t, rec.Body.String(), `<span id="sentiment">Positive</span>`)
	assert.Equal(t, 1, service.classifier.calls)
}

func TestAnalyzeMissingText(t *testing.T) {
	for name, values := range map[string]url.Values{
		"Empty":   {"text": {""}},
		"Missing": {},
	} {
		t.Run(name, func(t *testing.T) {
			service := newTestService(t, "en", &mockProvider{translated: "x"}, &mockClassifier{prediction: []int{0}})

			rec := service.postForm(values)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Please enter a sentence.")
			assert.Equal(t, 0, service.provider.calls)
			assert.Equal(t, 0, service.classifier.calls)
		})
	}
}

func TestAnalyzeMissingTextFrench(t *testing.T) {
	service := newTestService(t, "fr", &mockProvider{}, &mockClassifier{})

	rec := service.postForm(url.Values{})
	assert.Contains(t, rec.Body.String(), "Veuillez entrer une phrase.")
}

func TestAnalyzeSuccess(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "I love this film"}, &mockClassifier{prediction: []int{0}})

	rec := service.postForm(url.Values{"text": {"Me encanta esta pelicula"}})

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `<span id="sentiment">Positive</span>`)
	assert.Contains(t, body, `<span id="input-text">Me encanta esta pelicula</span>`)
	assert.Contains(t, body, `<span id="translated-text">I love this film</span>`)
	assert.Contains(t, body, `name="feedback" value="incorrect"`)
	assert.Equal(t, [][]string{{"I love this film"}}, service.classifier.inputs)
	assert.Empty(t, service.sink.events)
}

func TestAnalyzeLocalizedLabels(t *testing.T) {
	tests := []struct {
		locale string
		class  int
		label  string
	}{
		{"en", 0, "Positive"},
		{"en", 1, "Negative"},
		{"fr", 0, "Positif"},
		{"fr", 1, "Négatif"},
	}

	for _, tc := range tests {
		service := newTestService(t, tc.locale, &mockProvider{translated: "text"}, &mockClassifier{prediction: []int{tc.class}})
		rec := service.postForm(url.Values{"text": {"texte"}})
		assert.Contains(t, rec.Body.String(), `<span id="sentiment">`+tc.label+`</span>`, "locale %s class %d", tc.locale, tc.class)
	}
}

func TestAnalyzeTranslatorFailure(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{err: errors.New("quota exceeded")}, &mockClassifier{prediction: []int{1}})

	rec := service.postForm(url.Values{"text": {"terrible service"}})

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `<span id="sentiment">Negative</span>`)
	assert.Contains(t, body, `<span id="translated-text">terrible service</span>`)
	assert.NotContains(t, body, `id="error"`)
	assert.Equal(t, [][]string{{"terrible service"}}, service.classifier.inputs)
}

func TestAnalyzeInferenceFailure(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "hello"}, &mockClassifier{err: errors.New("model crashed")})

	rec := service.postForm(url.Values{"text": {"bonjour"}})

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "Error: model crashed")
	assert.NotContains(t, body, `id="sentiment"`)
	assert.NotContains(t, body, `id="translated-text"`)
}

func TestAnalyzeUnknownClass(t *testing.T) {
	service := newTestService(t, "fr", &mockProvider{translated: "hello"}, &mockClassifier{prediction: []int{3}})

	rec := service.postForm(url.Values{"text": {"bonjour"}})

	assert.Contains(t, rec.Body.String(), "Erreur : ")
	assert.NotContains(t, rec.Body.String(), `id="sentiment"`)
}

func TestAnalyzeFeedbackIncorrect(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "the soup was cold"}, &mockClassifier{prediction: []int{1}})

	rec := service.postForm(url.Values{"text": {"la sopa estaba fria"}, "feedback": {"incorrect"}})

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `id="feedback-received"`)
	assert.NotContains(t, body, `id="sentiment"`)
	assert.NotContains(t, body, `id="translated-text"`)

	require.Len(t, service.sink.events, 1)
	event := service.sink.events[0]
	assert.Equal(t, "the soup was cold", event.Text)
	assert.Equal(t, "la sopa estaba fria", event.OriginalText)
	assert.Equal(t, "Negative", event.PredictedLabel)
	assert.NotEmpty(t, event.Attributes["request_id"])
	assert.Equal(t, "en", event.Attributes["locale"])
}

func TestAnalyzeFeedbackUnknownValue(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "great"}, &mockClassifier{prediction: []int{0}})

	rec := service.postForm(url.Values{"text": {"genial"}, "feedback": {"correct"}})

	assert.Contains(t, rec.Body.String(), `<span id="sentiment">Positive</span>`)
	assert.Empty(t, service.sink.events)
}

func TestPredict(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "fine"}, &mockClassifier{prediction: []int{0}})

	rec := service.postJSON(`{"text":"good"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"original_text":"good","translated_text":"fine","prediction":[0]}`, rec.Body.String())
}

func TestPredictSkipsValidation(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "long"}, &mockClassifier{prediction: []int{1}})

	long := strings.Repeat("a", 1000)
	rec := service.postJSON(`{"text":"` + long + `"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, service.classifier.calls)

	rec = service.postJSON(`{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"original_text":"","translated_text":"","prediction":[1]}`, rec.Body.String())
	assert.Equal(t, 1, service.provider.calls)
}

func TestPredictInferenceFailure(t *testing.T) {
	service := newTestService(t, "en", &mockProvider{translated: "good"}, &mockClassifier{err: errors.New("model crashed")})

	rec := service.postJSON(`{"text":"good"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"model crashed"}`, rec.Body.String())
}

func TestPredictMalformedBody(t *testing.T) {
	for _, body := range []string{`{"text":`, ``, `not json`, `{"text": 5}`} {
		t.Run(body, func(t *testing.T) {
			service := newTestService(t, "en", &mockProvider{}, &mockClassifier{})

			rec := service.postJSON(body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var res map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.True(t, strings.HasPrefix(res["error"], "unable to parse request body: "), res["error"])
			assert.Equal(t, 0, service.provider.calls)
			assert.Equal(t, 0, service.classifier.calls)
		})
	}
}
