package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow/internal/db"
	"guestflow/internal/models"
)

type fakeAnalyzer struct {
	calls    int
	failText string
	failAll  bool
}

func (f *fakeAnalyzer) AnalyzeWithAspects(_ context.Context, text string) (*models.AnalysisResult, error) {
	f.calls++
	if f.failAll || (f.failText != "" && text == f.failText) {
		return nil, errors.New("completion failed after 5 attempts")
	}
	return &models.AnalysisResult{
		Sentiment:        models.SentimentResult{Label: models.LabelPositive, Score: 0.75},
		AspectSentiments: map[string]string{"Room": models.LabelPositive},
		Reasoning:        "looked fine",
	}, nil
}

type fakeStore struct {
	batches [][]db.AnalyzedFeedback
	failAll bool
}

func (f *fakeStore) SaveAnalyzedBatch(_ context.Context, items []db.AnalyzedFeedback) error {
	if f.failAll {
		return errors.New("connection refused")
	}
	f.batches = append(f.batches, items)
	return nil
}

type fakeCache struct {
	hits   map[string]*models.AnalysisResult
	stored map[string]*models.AnalysisResult
}

func (f *fakeCache) GetCachedAnalysis(_ context.Context, text string) (*models.AnalysisResult, bool) {
	result, ok := f.hits[text]
	return result, ok
}

func (f *fakeCache) CacheAnalysis(_ context.Context, text string, result *models.AnalysisResult) {
	if f.stored == nil {
		f.stored = map[string]*models.AnalysisResult{}
	}
	f.stored[text] = result
}

func makeRecords(n int) []models.FeedbackRecord {
	records := make([]models.FeedbackRecord, n)
	for i := range records {
		records[i] = models.FeedbackRecord{Text: fmt.Sprintf("review number %d was pleasant", i+1)}
	}
	return records
}

func TestBatchProcess(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	report := processor.Process(context.Background(), makeRecords(25), nil)

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 25, report.Total)
	assert.Equal(t, 25, report.Processed)
	assert.Empty(t, report.Errors)
	// Two full checkpoints plus the final partial flush.
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 10)
	assert.Len(t, store.batches[1], 10)
	assert.Len(t, store.batches[2], 5)
	assert.Equal(t, "en", store.batches[0][0].Language)
}

func TestBatchProcess_ItemFailureDoesNotAbort(t *testing.T) {
	records := makeRecords(3)
	analyzer := &fakeAnalyzer{failText: records[1].Text}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	report := processor.Process(context.Background(), records, nil)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "item 2")
}

func TestBatchProcess_ErrorListIsCapped(t *testing.T) {
	analyzer := &fakeAnalyzer{failAll: true}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	report := processor.Process(context.Background(), makeRecords(30), nil)

	assert.Equal(t, 0, report.Processed)
	assert.Len(t, report.Errors, maxReportedErrors)
}

func TestBatchProcess_LocalFallback(t *testing.T) {
	analyzer := &fakeAnalyzer{failAll: true}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, true)

	report := processor.Process(context.Background(), makeRecords(2), nil)

	assert.Equal(t, 2, report.Processed)
	assert.Empty(t, report.Errors)
	require.Len(t, store.batches, 1)
	saved := store.batches[0][0]
	assert.NotEmpty(t, saved.Analysis.Sentiment.Label)
	assert.Contains(t, saved.Analysis.Reasoning, "Scored locally")
}

func TestBatchProcess_CacheHitSkipsAnalyzer(t *testing.T) {
	records := makeRecords(2)
	cached := &models.AnalysisResult{
		Sentiment:        models.SentimentResult{Label: models.LabelVeryPositive, Score: 0.95},
		AspectSentiments: map[string]string{},
	}
	cache := &fakeCache{hits: map[string]*models.AnalysisResult{records[0].Text: cached}}
	analyzer := &fakeAnalyzer{}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, cache, false)

	report := processor.Process(context.Background(), records, nil)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, analyzer.calls)
	require.Len(t, store.batches, 1)
	assert.Equal(t, models.LabelVeryPositive, store.batches[0][0].Analysis.Sentiment.Label)
	// Both results, cached or fresh, end up written back to the cache.
	assert.Len(t, cache.stored, 2)
}

func TestBatchProcess_ProgressCallbacks(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	type tick struct {
		current, total int
		status         string
	}
	var ticks []tick
	processor.Process(context.Background(), makeRecords(3), func(current, total int, status string) {
		ticks = append(ticks, tick{current, total, status})
	})

	require.Len(t, ticks, 4)
	assert.Equal(t, tick{1, 3, "processing"}, ticks[0])
	assert.Equal(t, tick{2, 3, "processing"}, ticks[1])
	assert.Equal(t, tick{3, 3, "processing"}, ticks[2])
	assert.Equal(t, tick{3, 3, "completed"}, ticks[3])
}

func TestBatchProcess_ProgressNeverRegresses(t *testing.T) {
	records := makeRecords(3)
	analyzer := &fakeAnalyzer{failText: records[1].Text}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	var currents []int
	processor.Process(context.Background(), records, func(current, total int, status string) {
		currents = append(currents, current)
	})

	// A failed item between buffered successes must not drop the count.
	require.Len(t, currents, 4)
	assert.Equal(t, []int{1, 1, 2, 2}, currents)
	for i := 1; i < len(currents); i++ {
		assert.GreaterOrEqual(t, currents[i], currents[i-1])
	}
}

func TestBatchProcess_CheckpointFailureReported(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	store := &fakeStore{failAll: true}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	report := processor.Process(context.Background(), makeRecords(4), nil)

	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.True(t, strings.Contains(report.Errors[0], "failed to save"))
}

func TestBatchProcess_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := &fakeAnalyzer{}
	store := &fakeStore{}
	processor := NewBatchProcessor(analyzer, store, nil, false)

	report := processor.Process(ctx, makeRecords(5), nil)

	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, 0, report.Processed)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "canceled")
}