// Package export renders analyzed feedback for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"guestflow/internal/models"
)

var exportHeaders = []string{
	"ID", "Text", "Language", "Sentiment", "Score", "Hotel", "Rating", "Created At", "Aspects",
}

// FeedbacksToCSV renders feedbacks as a CSV document.
func FeedbacksToCSV(feedbacks []models.Feedback) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("[Export] failed to write CSV header: %w", err)
	}
	for _, fb := range feedbacks {
		if err := w.Write(feedbackRow(fb)); err != nil {
			return nil, fmt.Errorf("[Export] failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("[Export] failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// FeedbacksToExcel renders feedbacks as an xlsx workbook.
func FeedbacksToExcel(feedbacks []models.Feedback) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("[Export] failed to write header cell: %w", err)
		}
	}

	for rowIdx, fb := range feedbacks {
		for col, value := range feedbackRow(fb) {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("[Export] failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("[Export] failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func feedbackRow(fb models.Feedback) []string {
	rating := ""
	if fb.Rating != nil {
		rating = strconv.FormatFloat(*fb.Rating, 'f', -1, 64)
	}
	created := ""
	if !fb.CreatedAt.IsZero() {
		created = fb.CreatedAt.Format(time.RFC3339)
	}
	return []string{
		strconv.FormatInt(fb.ID, 10),
		fb.Text,
		fb.OriginalLanguage,
		fb.SentimentLabel,
		strconv.FormatFloat(fb.SentimentScore, 'f', 2, 64),
		fb.HotelName,
		rating,
		created,
		joinAspects(fb.Aspects),
	}
}

// joinAspects renders "Aspect:label" pairs in a stable order.
func joinAspects(aspects map[string]string) string {
	if len(aspects) == 0 {
		return ""
	}
	names := make([]string, 0, len(aspects))
	for name := range aspects {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name + ":" + aspects[name]
	}
	return out
}
