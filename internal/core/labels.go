package core

import "fmt"

type Sentiment int

const (
	Positive Sentiment = 0
	Negative Sentiment = 1
)

const (
	LocaleEnglish = "en"
	LocaleFrench  = "fr"
)

var sentimentLabels = map[string][2]string{
	LocaleEnglish: {"Positive", "Negative"},
	LocaleFrench:  {"Positif", "Négatif"},
}

// SentimentForClass maps a raw class index produced by the classifier to a
// sentiment. The mapping is fixed by the trained model: 0 is positive and 1
// is negative.
func SentimentForClass(classIndex int) (Sentiment, error) {
	switch classIndex {
	case 0:
		return Positive, nil
	case 1:
		return Negative, nil
	default:
		return 0, fmt.Errorf("unexpected class index %d returned by model", classIndex)
	}
}

// String returns the canonical (english) label.
func (s Sentiment) String() string {
	return s.Label(LocaleEnglish)
}

func (s Sentiment) Label(locale string) string {
	labels, ok := sentimentLabels[locale]
	if !ok {
		labels = sentimentLabels[LocaleEnglish]
	}
	if s != Positive && s != Negative {
		return fmt.Sprintf("Sentiment(%d)", int(s))
	}
	return labels[s]
}

func IsSupportedLocale(locale string) bool {
	_, ok := sentimentLabels[locale]
	return ok
}
