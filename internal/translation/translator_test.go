package translation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sentiment-backend/internal/translation"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	translated string
	err        error
	calls      int
}

func (s *stubProvider) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	s.calls++
	return s.translated, s.err
}

func TestAdapterSuccess(t *testing.T) {
	provider := &stubProvider{translated: "this movie is great"}
	res := translation.NewAdapter(provider).ToEnglish(context.Background(), "ce film est génial")

	assert.Equal(t, translation.Result{
		Original:   "ce film est génial",
		Translated: "this movie is great",
		Success:    true,
	}, res)
	assert.Equal(t, 1, provider.calls)
}

func TestAdapterFallsBackOnError(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exceeded")}
	res := translation.NewAdapter(provider).ToEnglish(context.Background(), "ce film est nul")

	assert.Equal(t, "ce film est nul", res.Translated)
	assert.Equal(t, "ce film est nul", res.Original)
	assert.False(t, res.Success)
}

func TestAdapterFallsBackOnEmptyTranslation(t *testing.T) {
	provider := &stubProvider{translated: ""}
	res := translation.NewAdapter(provider).ToEnglish(context.Background(), "bonjour")

	assert.Equal(t, "bonjour", res.Translated)
	assert.False(t, res.Success)
}

func TestAdapterSkipsEmptyInput(t *testing.T) {
	provider := &stubProvider{translated: "x"}
	res := translation.NewAdapter(provider).ToEnglish(context.Background(), "")

	assert.Equal(t, "", res.Translated)
	assert.Equal(t, 0, provider.calls)
}

func TestGoogleTranslator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate_a/single", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "gtx", query.Get("client"))
		assert.Equal(t, "auto", query.Get("sl"))
		assert.Equal(t, "en", query.Get("tl"))
		assert.Equal(t, "J'adore ce film. Il est superbe.", query.Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["I love this movie. ","J'adore ce film.",null,null,10],["It is superb.","Il est superbe.",null,null,10]],null,"fr",null,null,null,1,[],[["fr"],null,[1],["fr"]]]`))
	}))
	defer server.Close()

	translator := translation.NewGoogleTranslator(server.URL, time.Second)
	out, err := translator.Translate(context.Background(), "J'adore ce film. Il est superbe.", translation.AutoDetect, translation.English)
	require.NoError(t, err)
	assert.Equal(t, "I love this movie. It is superb.", out)
}

func TestGoogleTranslatorErrors(t *testing.T) {
	t.Run("Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := translation.NewGoogleTranslator(server.URL, time.Second).Translate(context.Background(), "hola", "auto", "en")
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"unexpected":true}`))
		}))
		defer server.Close()

		_, err := translation.NewGoogleTranslator(server.URL, time.Second).Translate(context.Background(), "hola", "auto", "en")
		assert.Error(t, err)
	})

	t.Run("Timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, err := translation.NewGoogleTranslator(server.URL, 20*time.Millisecond).Translate(context.Background(), "hola", "auto", "en")
		assert.Error(t, err)
	})
}

func TestLibreTranslator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hola mundo", body["q"])
		assert.Equal(t, "auto", body["source"])
		assert.Equal(t, "en", body["target"])
		assert.Equal(t, "secret", body["api_key"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"hello world"}`))
	}))
	defer server.Close()

	out, err := translation.NewLibreTranslator(server.URL, "secret", time.Second).Translate(context.Background(), "hola mundo", "auto", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestLibreTranslatorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer server.Close()

	_, err := translation.NewLibreTranslator(server.URL, "", time.Second).Translate(context.Background(), "hola", "auto", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[key] = value
	return nil
}

func TestCachedTranslator(t *testing.T) {
	provider := &stubProvider{translated: "good evening"}
	cache := &memoryCache{entries: map[string]string{}}
	translator := translation.NewCachedTranslator(provider, cache, time.Hour)

	for i := 0; i < 3; i++ {
		out, err := translator.Translate(context.Background(), "bonsoir", "auto", "en")
		require.NoError(t, err)
		assert.Equal(t, "good evening", out)
	}
	assert.Equal(t, 1, provider.calls)
	assert.Len(t, cache.entries, 1)
}

func TestCachedTranslatorDoesNotCacheFailures(t *testing.T) {
	provider := &stubProvider{err: errors.New("unavailable")}
	cache := &memoryCache{entries: map[string]string{}}
	translator := translation.NewCachedTranslator(provider, cache, time.Hour)

	_, err := translator.Translate(context.Background(), "bonsoir", "auto", "en")
	assert.Error(t, err)
	assert.Empty(t, cache.entries)
}

func TestCachedTranslatorIgnoresCacheErrors(t *testing.T) {
	provider := &stubProvider{translated: "thanks"}
	cache := &memoryCache{entries: map[string]string{}, err: errors.New("connection refused")}
	translator := translation.NewCachedTranslator(provider, cache, time.Hour)

	out, err := translator.Translate(context.Background(), "merci", "auto", "en")
	require.NoError(t, err)
	assert.Equal(t, "thanks", out)
	assert.Equal(t, 1, provider.calls)
}
