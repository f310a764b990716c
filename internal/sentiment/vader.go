package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"guestflow/internal/models"
)

var vaderAnalyzer = govader.NewSentimentIntensityAnalyzer()

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\(https?:\/\/[^\s\)]+\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// RemoveLinks keeps the anchor text of markdown links and strips bare URLs;
// neither carries sentiment and both confuse the lexicon scorer.
func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return bareURLPattern.ReplaceAllString(input, "")
}

// CleanReviewText renders any markdown in a review to plain text, collapses
// whitespace and drops links. Used before prompting and before VADER.
func CleanReviewText(input string) string {
	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := strings.Join(strings.Fields(string(rendered)), " ")
	return strings.TrimSpace(RemoveLinks(plain))
}

// AnalyzeWithVADER scores a review locally and maps the compound score onto
// the five-label scale. This is the degraded path when the completion model
// is unavailable.
func AnalyzeWithVADER(text string) models.SentimentResult {
	compound := vaderAnalyzer.PolarityScores(CleanReviewText(text)).Compound

	var label string
	switch {
	case compound >= 0.6:
		label = models.LabelVeryPositive
	case compound >= 0.2:
		label = models.LabelPositive
	case compound <= -0.6:
		label = models.LabelVeryNegative
	case compound <= -0.2:
		label = models.LabelNegative
	default:
		label = models.LabelNeutral
	}

	return models.SentimentResult{Label: label, Score: labelScores[label]}
}
