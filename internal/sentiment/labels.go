package sentiment

import (
	"strings"

	"guestflow/internal/models"
)

// Canonical score for each label on the closed five-value scale.
var labelScores = map[string]float64{
	models.LabelVeryPositive: 0.95,
	models.LabelPositive:     0.75,
	models.LabelNeutral:      0.5,
	models.LabelNegative:     0.3,
	models.LabelVeryNegative: 0.1,
}

// ParseSentimentLabel maps a free-text model response onto the closed label
// scale. Keyword groups are checked in order with the intensified categories
// first, so "very positive" never degrades to plain "positive". Bilingual
// keywords cover models that answer in Chinese. No match means neutral.
func ParseSentimentLabel(response string) (string, float64) {
	t := strings.ToLower(response)

	switch {
	case containsAny(t, "very_positive", "very positive", "excellent", "perfect", "极好", "非常满意"):
		return models.LabelVeryPositive, labelScores[models.LabelVeryPositive]

	case containsAny(t, "positive", "good", "nice", "great", "满意", "正面"):
		if strings.Contains(t, "very") {
			return models.LabelVeryPositive, labelScores[models.LabelVeryPositive]
		}
		return models.LabelPositive, labelScores[models.LabelPositive]

	case containsAny(t, "negative", "bad", "poor", "terrible", "负面", "差"):
		if strings.Contains(t, "very") || strings.Contains(t, "extremely") {
			return models.LabelVeryNegative, labelScores[models.LabelVeryNegative]
		}
		return models.LabelNegative, labelScores[models.LabelNegative]

	case containsAny(t, "very_negative", "awful", "worst"):
		return models.LabelVeryNegative, labelScores[models.LabelVeryNegative]
	}

	return models.LabelNeutral, labelScores[models.LabelNeutral]
}

// normalizeLabel coerces a structured sentiment value (an "aspects" map value
// or an "overall" field) onto the scale. Stricter than ParseSentimentLabel:
// only the canonical tokens count, intensified forms before base forms.
func normalizeLabel(value string) (string, float64) {
	t := strings.ToLower(value)
	switch {
	case strings.Contains(t, models.LabelVeryPositive):
		return models.LabelVeryPositive, labelScores[models.LabelVeryPositive]
	case strings.Contains(t, models.LabelPositive):
		return models.LabelPositive, labelScores[models.LabelPositive]
	case strings.Contains(t, models.LabelVeryNegative):
		return models.LabelVeryNegative, labelScores[models.LabelVeryNegative]
	case strings.Contains(t, models.LabelNegative):
		return models.LabelNegative, labelScores[models.LabelNegative]
	}
	return models.LabelNeutral, labelScores[models.LabelNeutral]
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
