package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns_ExactMatch(t *testing.T) {
	cols, err := ResolveColumns([]string{"Hotel", "Review", "Score"})
	require.NoError(t, err)
	assert.Equal(t, 1, cols.TextIndex)
	assert.Equal(t, 0, cols.SubjectIndex)
	assert.Equal(t, 2, cols.RatingIndex)
}

func TestResolveColumns_CaseAndSpacingInsensitive(t *testing.T) {
	cols, err := ResolveColumns([]string{"  TEXT  ", `"rating"`})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.TextIndex)
	assert.Equal(t, 1, cols.RatingIndex)
}

func TestResolveColumns_SubstringMatch(t *testing.T) {
	cols, err := ResolveColumns([]string{"id", "review_body", "点评评分"})
	require.NoError(t, err)
	assert.Equal(t, 1, cols.TextIndex)
	assert.Equal(t, 2, cols.RatingIndex)
}

func TestResolveColumns_ChineseHeaders(t *testing.T) {
	cols, err := ResolveColumns([]string{"酒店", "客户评论"})
	require.NoError(t, err)
	assert.Equal(t, 1, cols.TextIndex)
	assert.Equal(t, 0, cols.SubjectIndex)
}

func TestResolveColumns_SingleColumnFallback(t *testing.T) {
	cols, err := ResolveColumns([]string{"whatever"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.TextIndex)
	assert.Equal(t, -1, cols.SubjectIndex)
	assert.Equal(t, -1, cols.RatingIndex)
}

func TestResolveColumns_NoTextColumn(t *testing.T) {
	headers := []string{"id", "date", "author"}
	_, err := ResolveColumns(headers)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, headers, schemaErr.Headers)
	assert.Contains(t, schemaErr.Expected, "review")
	assert.Contains(t, err.Error(), "author")
}

func TestResolveColumns_FirstMatchWins(t *testing.T) {
	// Two plausible text columns: resolution is deterministic, the
	// leftmost matching header wins.
	cols, err := ResolveColumns([]string{"comment", "text"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.TextIndex)
}

func TestResolveColumns_OptionalColumnsAbsent(t *testing.T) {
	cols, err := ResolveColumns([]string{"review", "date"})
	require.NoError(t, err)
	assert.Equal(t, 0, cols.TextIndex)
	assert.Equal(t, -1, cols.SubjectIndex)
	assert.Equal(t, -1, cols.RatingIndex)
}
