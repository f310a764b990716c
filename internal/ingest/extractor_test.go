package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedbackTable(rows [][]string) *DecodedTable {
	return &DecodedTable{
		Headers: []string{"hotel", "review", "rating"},
		Rows:    rows,
	}
}

var feedbackCols = ColumnMap{TextIndex: 1, SubjectIndex: 0, RatingIndex: 2}

func TestExtractRecords_HappyPath(t *testing.T) {
	records, stats, err := ExtractRecords(feedbackTable([][]string{
		{"Grand Hotel", "Lovely stay", "5"},
		{"Grand Hotel", "Room was noisy", "2.5"},
	}), feedbackCols)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Lovely stay", records[0].Text)
	assert.Equal(t, "Grand Hotel", records[0].HotelName)
	require.NotNil(t, records[0].Rating)
	assert.Equal(t, 5.0, *records[0].Rating)

	require.NotNil(t, records[1].Rating)
	assert.Equal(t, 2.5, *records[1].Rating)
	assert.Equal(t, 2, stats.Valid)
}

func TestExtractRecords_SkipsBlankAndShortRows(t *testing.T) {
	records, stats, err := ExtractRecords(feedbackTable([][]string{
		{"", "  ", ""},
		{"Grand Hotel"},
		{"Grand Hotel", "Decent breakfast", "4"},
	}), feedbackCols)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Empty)
	assert.Equal(t, 1, stats.Invalid)
	assert.Equal(t, 1, stats.Valid)
}

func TestExtractRecords_NullMarkersAndResidues(t *testing.T) {
	records, stats, err := ExtractRecords(feedbackTable([][]string{
		{"h", "nan", ""},
		{"h", "NULL", ""},
		{"h", "n/a", ""},
		{"h", "x", ""},
		{"h", "ok stay", ""},
	}), feedbackCols)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ok stay", records[0].Text)
	assert.Equal(t, 4, stats.Invalid)
}

func TestExtractRecords_RatingCoercion(t *testing.T) {
	records, _, err := ExtractRecords(feedbackTable([][]string{
		{"h", "fine stay", "3.5"},
		{"h", "fine stay", "7"},
		{"h", "fine stay", "abc"},
		{"h", "fine stay", "0.5"},
	}), feedbackCols)
	require.NoError(t, err)
	require.Len(t, records, 4)

	require.NotNil(t, records[0].Rating)
	assert.Equal(t, 3.5, *records[0].Rating)
	assert.Nil(t, records[1].Rating)
	assert.Nil(t, records[2].Rating)
	assert.Nil(t, records[3].Rating)
}

func TestExtractRecords_NoValidRecords(t *testing.T) {
	_, stats, err := ExtractRecords(feedbackTable([][]string{
		{"", "", ""},
		{"h", "nan", ""},
	}), feedbackCols)
	assert.ErrorIs(t, err, ErrNoValidRecords)
	assert.Equal(t, 0, stats.Valid)
}

func TestExtractRecords_SubjectCleaning(t *testing.T) {
	records, _, err := ExtractRecords(feedbackTable([][]string{
		{"  ", "quiet and clean", ""},
		{"nan", "quiet and clean", ""},
	}), feedbackCols)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, records[0].HotelName)
	assert.Empty(t, records[1].HotelName)
}
