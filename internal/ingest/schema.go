package ingest

import (
	"fmt"
	"strings"
)

// Ordered synonym lists for column resolution. First match wins, so the more
// common names come first.
var (
	textColumnSynonyms = []string{
		"text", "review", "content", "comment", "feedback", "body",
		"评论", "内容", "反馈", "description",
	}
	subjectColumnSynonyms = []string{"hotel_name", "hotel", "hotel name", "酒店"}
	ratingColumnSynonyms  = []string{"rating", "score", "评分"}
)

// ColumnMap holds resolved column positions. Optional columns are -1 when the
// header carries no recognizable name for them.
type ColumnMap struct {
	TextIndex    int
	SubjectIndex int
	RatingIndex  int
}

// SchemaError reports that no text column could be resolved. It carries the
// synonym list we tried and the headers we actually saw so the caller can
// show a usable message.
type SchemaError struct {
	Expected []string
	Headers  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("[Schema] no text column found; expected one of [%s], got headers [%s]",
		strings.Join(e.Expected, ", "), strings.Join(e.Headers, ", "))
}

// ResolveColumns resolves the text column and the optional subject and rating
// columns from a header row. Resolution is deterministic: exact synonym match
// first, then substring match, then the single-column fallback for text.
func ResolveColumns(headers []string) (ColumnMap, error) {
	clean := make([]string, len(headers))
	for i, h := range headers {
		clean[i] = normalizeHeader(h)
	}

	cols := ColumnMap{
		TextIndex:    matchColumn(clean, textColumnSynonyms),
		SubjectIndex: matchColumn(clean, subjectColumnSynonyms),
		RatingIndex:  matchColumn(clean, ratingColumnSynonyms),
	}

	if cols.TextIndex < 0 {
		if len(headers) == 1 {
			cols.TextIndex = 0
			return cols, nil
		}
		return cols, &SchemaError{Expected: textColumnSynonyms, Headers: headers}
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"'`)
	return strings.ToLower(strings.TrimSpace(h))
}

// matchColumn returns the index of the first header matching a synonym
// exactly, falling back to substring containment, or -1.
func matchColumn(headers []string, synonyms []string) int {
	for i, h := range headers {
		for _, s := range synonyms {
			if h == s {
				return i
			}
		}
	}
	for i, h := range headers {
		for _, s := range synonyms {
			if strings.Contains(h, s) {
				return i
			}
		}
	}
	return -1
}
