// Package language tags ingested text with its dominant script. The detector
// is a two-way zh/en classifier; adding a language means adding a script
// range and a threshold branch.
package language

import "unicode"

const chineseRatioThreshold = 0.3

// Detect returns "zh" when CJK ideographs make up more than 30% of the
// non-whitespace characters, otherwise "en". Empty text defaults to "zh".
func Detect(text string) string {
	if text == "" {
		return "zh"
	}

	var chinese, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r >= 0x4E00 && r <= 0x9FFF {
			chinese++
		}
	}

	if total > 0 && float64(chinese)/float64(total) > chineseRatioThreshold {
		return "zh"
	}
	return "en"
}
