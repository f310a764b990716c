package sentiment

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"guestflow/internal/models"
)

const defaultReasoning = "No detailed reasoning provided."

// NormalizeAspectResponse turns raw model output from the aspect-extraction
// prompt into a fully populated AnalysisResult. It runs the parser chain in
// order and normalizes whatever the first successful strategy recovered.
// This stage never fails: the worst case is a neutral result with an empty
// aspect map.
func NormalizeAspectResponse(response string) *models.AnalysisResult {
	for _, strategy := range aspectParserChain {
		payload, ok := strategy.tryParse(response)
		if !ok {
			continue
		}
		if _, isScan := strategy.(keyValueScanStrategy); isScan {
			snippet := response
			if len(snippet) > 100 {
				snippet = snippet[:100] + "..."
			}
			slog.Warn("[Normalizer] structured parse failed, used key/value scan",
				slog.String("response_snippet", snippet))
		}
		return normalizePayload(payload)
	}

	// The scan strategy always succeeds, so this is only reachable if the
	// chain is emptied out.
	return &models.AnalysisResult{
		Sentiment:        models.SentimentResult{Label: models.LabelNeutral, Score: 0.5},
		AspectSentiments: map[string]string{},
		Reasoning:        defaultReasoning,
	}
}

// normalizePayload applies the closed-vocabulary rules: overall sentiment
// coerced to the five-label scale, aspect names mapped or dropped, and
// detail entries overriding the flat map when both mention an aspect.
func normalizePayload(payload *rawAspectPayload) *models.AnalysisResult {
	overallLabel, overallScore := normalizeLabel(coerceOverall(payload.Overall))

	reasoning := defaultReasoning
	if r, ok := payload.Reasoning.(string); ok && r != "" {
		reasoning = r
	}

	flat := payload.Aspects
	if len(flat) == 0 {
		flat = payload.AspectSentiments
	}

	aspects := make(map[string]string, len(flat))
	for rawName, rawValue := range flat {
		canonical, ok := MapAspect(rawName)
		if !ok {
			continue
		}
		label, _ := normalizeLabel(coerceString(rawValue))
		aspects[canonical] = label
	}

	var details []models.AspectDetail
	for _, raw := range payload.AspectDetails {
		var detail rawAspectDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			continue
		}
		canonical, ok := MapAspect(detail.Aspect)
		if !ok {
			continue
		}
		label, _ := normalizeLabel(detail.Sentiment)
		// Detail entries win over the flat map.
		aspects[canonical] = label

		evidence := detail.Evidence
		if evidence == "" {
			evidence = "Mentioned in review"
		}
		details = append(details, models.AspectDetail{
			Aspect:      canonical,
			Sentiment:   label,
			Evidence:    evidence,
			Explanation: detail.Explanation,
		})
	}

	return &models.AnalysisResult{
		Sentiment:        models.SentimentResult{Label: overallLabel, Score: overallScore},
		AspectSentiments: aspects,
		Reasoning:        reasoning,
		AspectDetails:    details,
	}
}

// coerceOverall handles models that return {"overall": {"label": "..."}}
// instead of a plain string.
func coerceOverall(v any) string {
	if m, ok := v.(map[string]any); ok {
		return coerceString(m["label"])
	}
	return coerceString(v)
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}
