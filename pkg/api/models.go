package api

type PredictRequest struct {
	Text string `json:"text"`
}

type PredictResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Prediction     []int  `json:"prediction"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalyzeForm is the urlencoded body of the form endpoint.
type AnalyzeForm struct {
	Text     string `schema:"text"`
	Feedback string `schema:"feedback"`
}

const FeedbackIncorrect = "incorrect"
