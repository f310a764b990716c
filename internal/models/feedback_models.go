package models

import "time"

// FeedbackRecord is the normalized unit produced by ingestion. Rating is nil
// when the source row carried no usable value in [1,5].
type FeedbackRecord struct {
	Text      string   `json:"text"`
	HotelName string   `json:"hotel_name,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
}

// Feedback is the persisted form of a record, enriched with analysis output.
type Feedback struct {
	ID               int64             `json:"id"`
	Text             string            `json:"text"`
	OriginalLanguage string            `json:"original_language"`
	SentimentLabel   string            `json:"sentiment_label,omitempty"`
	SentimentScore   float64           `json:"sentiment_score,omitempty"`
	HotelName        string            `json:"hotel_name,omitempty"`
	Rating           *float64          `json:"rating,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	Aspects          map[string]string `json:"aspects,omitempty"`
}
