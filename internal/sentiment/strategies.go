package sentiment

import (
	"encoding/json"
	"regexp"
	"strings"
)

// rawAspectPayload is the loosely typed shape of one aspect-extraction
// response. Field types stay permissive because the model does not reliably
// honor the schema it was asked for.
type rawAspectPayload struct {
	Overall          any               `json:"overall"`
	Aspects          map[string]any    `json:"aspects"`
	AspectSentiments map[string]any    `json:"aspect_sentiments"`
	Reasoning        any               `json:"reasoning"`
	AspectDetails    []json.RawMessage `json:"aspect_details"`
}

type rawAspectDetail struct {
	Aspect      string `json:"aspect"`
	Sentiment   string `json:"sentiment"`
	Evidence    string `json:"evidence"`
	Explanation string `json:"explanation"`
}

// parserStrategy is one attempt at recovering a structured record from model
// output. Strategies run in order; the first success wins.
type parserStrategy interface {
	name() string
	tryParse(response string) (*rawAspectPayload, bool)
}

var aspectParserChain = []parserStrategy{
	directJSONStrategy{},
	embeddedJSONStrategy{},
	keyValueScanStrategy{},
}

// directJSONStrategy parses the whole response as JSON after stripping the
// code fences models like to wrap their answers in.
type directJSONStrategy struct{}

func (directJSONStrategy) name() string { return "direct_json" }

func (directJSONStrategy) tryParse(response string) (*rawAspectPayload, bool) {
	clean := stripCodeFences(response)
	var payload rawAspectPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// embeddedJSONStrategy pulls the outermost {...} span out of surrounding
// prose and parses that.
type embeddedJSONStrategy struct{}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

func (embeddedJSONStrategy) name() string { return "embedded_json" }

func (embeddedJSONStrategy) tryParse(response string) (*rawAspectPayload, bool) {
	span := jsonObjectPattern.FindString(response)
	if span == "" {
		return nil, false
	}
	var payload rawAspectPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

// keyValueScanStrategy is the last resort: scan for key: value shaped
// fragments and build a best-effort aspect map. It always succeeds, which is
// what guarantees the normalizer never fails.
type keyValueScanStrategy struct{}

var keyValuePattern = regexp.MustCompile(`["']?([\p{L}\p{N}_-]+)["']?\s*[:：]\s*["']?([a-zA-Z_]+)["']?`)

// Structural field names that a key:value scan must not mistake for aspects.
var scanStopList = map[string]struct{}{
	"overall":           {},
	"reasoning":         {},
	"aspect":            {},
	"aspects":           {},
	"sentiment":         {},
	"evidence":          {},
	"explanation":       {},
	"aspect_details":    {},
	"aspect_sentiments": {},
	"label":             {},
	"score":             {},
}

func (keyValueScanStrategy) name() string { return "key_value_scan" }

func (keyValueScanStrategy) tryParse(response string) (*rawAspectPayload, bool) {
	aspects := make(map[string]any)
	for _, m := range keyValuePattern.FindAllStringSubmatch(response, -1) {
		key, value := m[1], m[2]
		if _, stop := scanStopList[strings.ToLower(key)]; stop {
			continue
		}
		aspects[key] = value
	}

	return &rawAspectPayload{
		Overall:   "neutral",
		Aspects:   aspects,
		Reasoning: "Analysis generated via fallback extraction.",
	}, true
}

func stripCodeFences(response string) string {
	clean := strings.TrimSpace(response)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}
