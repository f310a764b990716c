package models

// Sentiment labels form a closed five-value vocabulary. Anything the
// completion model emits is coerced onto this scale before leaving the
// sentiment package.
const (
	LabelVeryPositive = "very_positive"
	LabelPositive     = "positive"
	LabelNeutral      = "neutral"
	LabelNegative     = "negative"
	LabelVeryNegative = "very_negative"
)

type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AspectDetail is one evidence entry from the aspect-extraction prompt.
type AspectDetail struct {
	Aspect      string `json:"aspect"`
	Sentiment   string `json:"sentiment"`
	Evidence    string `json:"evidence"`
	Explanation string `json:"explanation,omitempty"`
}

// AnalysisResult is the fully normalized output of one aspect analysis run.
// Sentiment is always populated and AspectSentiments is never nil; callers
// can rely on both regardless of how malformed the model output was.
type AnalysisResult struct {
	Sentiment        SentimentResult   `json:"sentiment"`
	AspectSentiments map[string]string `json:"aspect_sentiments"`
	Reasoning        string            `json:"reasoning"`
	AspectDetails    []AspectDetail    `json:"aspect_details,omitempty"`
}
