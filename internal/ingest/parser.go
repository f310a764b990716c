package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"guestflow/internal/models"
)

// Ordered key synonyms for JSON uploads.
var (
	jsonTextKeys    = []string{"text", "review", "comment"}
	jsonSubjectKeys = []string{"hotel_name", "hotel"}
	jsonRatingKeys  = []string{"rating", "score"}
)

// ParseUpload dispatches on the filename extension and returns normalized
// feedback records plus per-row statistics.
func ParseUpload(data []byte, filename string) ([]models.FeedbackRecord, *ExtractStats, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	slog.Info("[Parser] parsing upload",
		slog.String("filename", filename),
		slog.Int("bytes", len(data)))

	switch ext {
	case ".csv":
		return parseCSV(data)
	case ".txt":
		return parseTxt(data)
	case ".json":
		return parseJSON(data)
	case ".xlsx", ".xlsm":
		return parseExcel(data)
	default:
		return nil, nil, fmt.Errorf("[Parser] unsupported file type: %s", ext)
	}
}

func parseCSV(data []byte) ([]models.FeedbackRecord, *ExtractStats, error) {
	text, encodingName, err := DecodeUpload(data)
	if err != nil {
		return nil, nil, err
	}
	delimiter := SniffDelimiter(text)
	slog.Info("[Parser] sniffed CSV format",
		slog.String("encoding", encodingName),
		slog.String("delimiter", string(delimiter)))

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, nil, fmt.Errorf("[Parser] failed to read header row: %w", err)
	}

	cols, err := ResolveColumns(headers)
	if err != nil {
		return nil, nil, err
	}

	table := &DecodedTable{Headers: headers}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A ragged or badly quoted row is a skip, not a failure.
			slog.Warn("[Parser] skipping unreadable CSV row", slog.String("error", err.Error()))
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return ExtractRecords(table, cols)
}

// parseTxt treats every non-blank line as one review with no auxiliary
// fields.
func parseTxt(data []byte) ([]models.FeedbackRecord, *ExtractStats, error) {
	text, _, err := DecodeUpload(data)
	if err != nil {
		return nil, nil, err
	}

	stats := &ExtractStats{}
	var records []models.FeedbackRecord
	for _, line := range strings.Split(text, "\n") {
		stats.Total++
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			stats.Empty++
			continue
		}
		if !isUsableText(line) {
			stats.Invalid++
			continue
		}
		records = append(records, models.FeedbackRecord{Text: line})
		stats.Valid++
	}

	if len(records) == 0 {
		return nil, stats, ErrNoValidRecords
	}
	return records, stats, nil
}

func parseJSON(data []byte) ([]models.FeedbackRecord, *ExtractStats, error) {
	text, _, err := DecodeUpload(data)
	if err != nil {
		return nil, nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, nil, fmt.Errorf("[Parser] JSON upload must be an array of objects: %w", err)
	}

	stats := &ExtractStats{}
	var records []models.FeedbackRecord
	for _, item := range items {
		stats.Total++

		reviewText := strings.TrimSpace(firstStringValue(item, jsonTextKeys))
		if !isUsableText(reviewText) {
			stats.Invalid++
			continue
		}

		record := models.FeedbackRecord{Text: reviewText}
		if subject := strings.TrimSpace(firstStringValue(item, jsonSubjectKeys)); subject != "" {
			record.HotelName = subject
		}
		for _, key := range jsonRatingKeys {
			if v, ok := item[key]; ok {
				if rating := coerceRating(v); rating != nil {
					record.Rating = rating
				}
				break
			}
		}

		records = append(records, record)
		stats.Valid++
	}

	if len(records) == 0 {
		return nil, stats, ErrNoValidRecords
	}
	return records, stats, nil
}

// parseExcel reads the first sheet as a decoded table; the spreadsheet
// library already handles encoding, so the sniffer is not involved.
func parseExcel(data []byte) ([]models.FeedbackRecord, *ExtractStats, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyUpload
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("[Parser] failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyUpload
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("[Parser] failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyUpload
	}

	cols, err := ResolveColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}
	table := &DecodedTable{Headers: rows[0], Rows: rows[1:]}
	return ExtractRecords(table, cols)
}

func firstStringValue(item map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := item[key]; ok {
			switch s := v.(type) {
			case string:
				if s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func coerceRating(v any) *float64 {
	switch r := v.(type) {
	case float64:
		if r >= 1 && r <= 5 {
			return &r
		}
	case string:
		return parseRating(r)
	}
	return nil
}
