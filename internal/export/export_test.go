package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"guestflow/internal/models"
)

func sampleFeedbacks() []models.Feedback {
	rating := 4.5
	return []models.Feedback{
		{
			ID:               1,
			Text:             "Great room, terrible breakfast",
			OriginalLanguage: "en",
			SentimentLabel:   models.LabelPositive,
			SentimentScore:   0.75,
			HotelName:        "Grand Hotel",
			Rating:           &rating,
			CreatedAt:        time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
			Aspects: map[string]string{
				"Room": models.LabelPositive,
				"Food": models.LabelNegative,
			},
		},
		{
			ID:               2,
			Text:             "位置很好",
			OriginalLanguage: "zh",
			SentimentLabel:   models.LabelVeryPositive,
			SentimentScore:   0.95,
		},
	}
}

func TestFeedbacksToCSV(t *testing.T) {
	data, err := FeedbacksToCSV(sampleFeedbacks())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{
		"1", "Great room, terrible breakfast", "en", "positive", "0.75",
		"Grand Hotel", "4.5", "2026-08-01T10:30:00Z", "Food:negative, Room:positive",
	}, rows[1])

	// Optional fields render as empty strings.
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "", rows[2][6])
	assert.Equal(t, "", rows[2][7])
	assert.Equal(t, "", rows[2][8])
}

func TestFeedbacksToCSV_Empty(t *testing.T) {
	data, err := FeedbacksToCSV(nil)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, exportHeaders, rows[0])
}

func TestFeedbacksToExcel(t *testing.T) {
	data, err := FeedbacksToExcel(sampleFeedbacks())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Great room, terrible breakfast", rows[1][1])
	assert.Equal(t, "Food:negative, Room:positive", rows[1][8])
	assert.Equal(t, "位置很好", rows[2][1])
}

func TestJoinAspects(t *testing.T) {
	assert.Equal(t, "", joinAspects(nil))
	assert.Equal(t, "Location:neutral", joinAspects(map[string]string{"Location": "neutral"}))
	assert.Equal(t, "Price:negative, Service:positive",
		joinAspects(map[string]string{"Service": "positive", "Price": "negative"}))
}
