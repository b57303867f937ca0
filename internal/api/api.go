package api

import (
	"errors"
	"net/http"
	"sentiment-backend/internal/core"
	"sentiment-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type SentimentService struct {
	pipeline *core.Pipeline
	locale   string
}

func NewSentimentService(pipeline *core.Pipeline, locale string) *SentimentService {
	if !core.IsSupportedLocale(locale) {
		locale = core.LocaleEnglish
	}
	return &SentimentService{pipeline: pipeline, locale: locale}
}

func (s *SentimentService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Get("/", s.Home)
	r.Post("/", s.Analyze)
	r.Post("/predict", RestHandler(s.Predict))
}

func (s *SentimentService) newView() IndexView {
	return IndexView{
		Lang:      s.locale,
		Messages:  messagesFor(s.locale),
		MaxLength: s.pipeline.MaxTextLength(),
	}
}

func (s *SentimentService) Home(w http.ResponseWriter, r *http.Request) {
	renderIndex(w, s.newView())
}

func (s *SentimentService) Analyze(w http.ResponseWriter, r *http.Request) {
	view := s.newView()

	form, err := ParseForm[api.AnalyzeForm](r)
	if err != nil {
		view.setError(view.Messages.ErrorPrefix + err.Error())
		renderIndex(w, view)
		return
	}

	analysis, err := s.pipeline.Analyze(r.Context(), form.Text)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTextTooLong):
			view.setError(view.textTooLong())
		case errors.Is(err, core.ErrTextRequired):
			view.setError(view.Messages.EnterSentence)
		default:
			view.setError(view.Messages.ErrorPrefix + err.Error())
		}
		renderIndex(w, view)
		return
	}

	if form.Feedback == api.FeedbackIncorrect {
		s.pipeline.ReportIncorrect(r.Context(), analysis, map[string]string{
			"request_id": middleware.GetReqID(r.Context()),
			"locale":     s.locale,
		})
		view.FeedbackReceived = true
		renderIndex(w, view)
		return
	}

	view.Sentiment = analysis.Sentiment.Label(s.locale)
	view.InputText = analysis.OriginalText
	view.TranslatedText = analysis.TranslatedText
	view.FeedbackReceived = true
	renderIndex(w, view)
}

func (s *SentimentService) Predict(r *http.Request) (any, error) {
	req, err := ParseRequest[api.PredictRequest](r)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	analysis, err := s.pipeline.Predict(r.Context(), req.Text)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.PredictResponse{
		OriginalText:   analysis.OriginalText,
		TranslatedText: analysis.TranslatedText,
		Prediction:     analysis.Prediction,
	}, nil
}
