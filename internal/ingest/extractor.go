package ingest

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"guestflow/internal/models"
)

// ErrNoValidRecords is returned when a parsed file yields nothing usable.
// Individual bad rows are only counted; this fires when every row was bad.
var ErrNoValidRecords = errors.New("[Extractor] no valid records found in upload")

// Values treated as absent text regardless of case.
var nullMarkers = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
}

// DecodedTable is a header row plus data rows. Rows align positionally with
// the header but may fall short; the extractor handles that defensively.
type DecodedTable struct {
	Headers []string
	Rows    [][]string
}

// ExtractStats counts what happened to the rows of one upload. The numbers
// feed the upload report and never influence control flow.
type ExtractStats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Empty   int `json:"empty"`
	Invalid int `json:"invalid"`
}

// ExtractRecords walks the table and produces normalized feedback records.
// A malformed row never aborts the batch; only a completely empty result is
// an error.
func ExtractRecords(table *DecodedTable, cols ColumnMap) ([]models.FeedbackRecord, *ExtractStats, error) {
	stats := &ExtractStats{}
	var records []models.FeedbackRecord

	for i, row := range table.Rows {
		stats.Total++

		if isBlankRow(row) {
			stats.Empty++
			continue
		}
		if len(row) <= cols.TextIndex {
			slog.Warn("[Extractor] row has too few columns, skipping",
				slog.Int("row", i+2),
				slog.Int("columns", len(row)))
			stats.Invalid++
			continue
		}

		text := strings.TrimSpace(row[cols.TextIndex])
		if !isUsableText(text) {
			stats.Invalid++
			continue
		}

		record := models.FeedbackRecord{Text: text}
		if cols.SubjectIndex >= 0 && cols.SubjectIndex < len(row) {
			if subject := strings.TrimSpace(row[cols.SubjectIndex]); isUsableText(subject) {
				record.HotelName = subject
			}
		}
		if cols.RatingIndex >= 0 && cols.RatingIndex < len(row) {
			record.Rating = parseRating(row[cols.RatingIndex])
		}

		records = append(records, record)
		stats.Valid++
	}

	slog.Info("[Extractor] finished extracting rows",
		slog.Int("total", stats.Total),
		slog.Int("valid", stats.Valid),
		slog.Int("empty", stats.Empty),
		slog.Int("invalid", stats.Invalid))

	if len(records) == 0 {
		return nil, stats, ErrNoValidRecords
	}
	return records, stats, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isUsableText rejects empty strings, single-character residues and the
// usual null markers.
func isUsableText(s string) bool {
	if s == "" || utf8.RuneCountInString(s) <= 1 {
		return false
	}
	_, isNull := nullMarkers[strings.ToLower(s)]
	return !isNull
}

// parseRating accepts only floats inside [1,5]; anything else means the
// record simply has no rating.
func parseRating(cell string) *float64 {
	r, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || r < 1 || r > 5 {
		return nil
	}
	return &r
}
