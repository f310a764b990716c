package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"guestflow/internal/db"
	"guestflow/internal/language"
	"guestflow/internal/models"
	"guestflow/internal/sentiment"
	"guestflow/internal/utils"
)

const (
	defaultCheckpointSize = 10
	maxReportedErrors     = 10
)

// AspectAnalyzer is the slice of the sentiment analyzer the batch driver
// needs.
type AspectAnalyzer interface {
	AnalyzeWithAspects(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// ResultCache lets re-uploaded texts skip the completion model. A nil cache
// disables the lookup.
type ResultCache interface {
	GetCachedAnalysis(ctx context.Context, text string) (*models.AnalysisResult, bool)
	CacheAnalysis(ctx context.Context, text string, result *models.AnalysisResult)
}

// BatchStore receives checkpoints of analyzed records.
type BatchStore interface {
	SaveAnalyzedBatch(ctx context.Context, items []db.AnalyzedFeedback) error
}

// ProgressFunc is invoked after every item so the transport layer can stream
// progress to the client.
type ProgressFunc func(current, total int, status string)

// BatchReport is what an upload request ultimately returns: counts plus a
// capped list of per-item errors. Partial failure never fails the batch.
type BatchReport struct {
	BatchID   string   `json:"batch_id"`
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

// BatchProcessor walks a batch of feedback records sequentially, analyzing
// each one and committing results at checkpoint boundaries. One item's
// failure never aborts the rest.
type BatchProcessor struct {
	analyzer       AspectAnalyzer
	store          BatchStore
	cache          ResultCache
	localFallback  bool
	checkpointSize int
}

// NewBatchProcessor wires the driver. localFallback enables VADER scoring
// for items the completion model could not handle; without it those items
// are reported as errors.
func NewBatchProcessor(analyzer AspectAnalyzer, store BatchStore, cache ResultCache, localFallback bool) *BatchProcessor {
	return &BatchProcessor{
		analyzer:       analyzer,
		store:          store,
		cache:          cache,
		localFallback:  localFallback,
		checkpointSize: defaultCheckpointSize,
	}
}

func (p *BatchProcessor) Process(ctx context.Context, records []models.FeedbackRecord, progress ProgressFunc) *BatchReport {
	report := &BatchReport{
		BatchID: uuid.NewString(),
		Total:   len(records),
	}
	buffer := utils.NewBatchBuffer[db.AnalyzedFeedback](p.checkpointSize)

	slog.Info("[Batch] Starting batch analysis",
		slog.String("batch_id", report.BatchID),
		slog.Int("total", report.Total))

	for i, record := range records {
		select {
		case <-ctx.Done():
			p.addError(report, fmt.Sprintf("batch canceled after item %d: %v", i, ctx.Err()))
			p.flush(ctx, buffer, report)
			return report
		default:
		}

		result, err := p.analyzeOne(ctx, record.Text)
		if err != nil {
			slog.Warn("[Batch] item analysis failed, continuing",
				slog.Int("item", i+1),
				slog.String("error", err.Error()))
			p.addError(report, fmt.Sprintf("item %d: %v", i+1, err))
			p.reportProgress(progress, report.Processed+buffer.Size(), report.Total, "processing")
			continue
		}

		buffer.Add(db.AnalyzedFeedback{
			Record:   record,
			Language: language.Detect(record.Text),
			Analysis: result,
		})
		if p.cache != nil {
			p.cache.CacheAnalysis(ctx, record.Text, result)
		}

		if buffer.Full() {
			p.flush(ctx, buffer, report)
		}
		p.reportProgress(progress, report.Processed+buffer.Size(), report.Total, "processing")
	}

	p.flush(ctx, buffer, report)
	p.reportProgress(progress, report.Processed, report.Total, "completed")

	slog.Info("[Batch] Batch analysis finished",
		slog.String("batch_id", report.BatchID),
		slog.Int("processed", report.Processed),
		slog.Int("total", report.Total),
		slog.Int("errors", len(report.Errors)))
	return report
}

// analyzeOne resolves a single text: cache hit, completion model, or the
// local VADER fallback when the model is unavailable.
func (p *BatchProcessor) analyzeOne(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if p.cache != nil {
		if cached, ok := p.cache.GetCachedAnalysis(ctx, text); ok {
			return cached, nil
		}
	}

	result, err := p.analyzer.AnalyzeWithAspects(ctx, text)
	if err == nil {
		return result, nil
	}
	if !p.localFallback {
		return nil, err
	}

	slog.Warn("[Batch] completion model unavailable, scoring locally",
		slog.String("error", err.Error()))
	return &models.AnalysisResult{
		Sentiment:        sentiment.AnalyzeWithVADER(text),
		AspectSentiments: map[string]string{},
		Reasoning:        "Scored locally; the completion model was unavailable.",
	}, nil
}

func (p *BatchProcessor) flush(ctx context.Context, buffer *utils.BatchBuffer[db.AnalyzedFeedback], report *BatchReport) {
	batch := buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}
	if err := p.store.SaveAnalyzedBatch(ctx, batch); err != nil {
		slog.Error("[Batch] checkpoint write failed",
			slog.Int("items", len(batch)),
			slog.String("error", err.Error()))
		p.addError(report, fmt.Sprintf("failed to save %d analyzed items: %v", len(batch), err))
		return
	}
	report.Processed += len(batch)
}

func (p *BatchProcessor) addError(report *BatchReport, msg string) {
	if len(report.Errors) < maxReportedErrors {
		report.Errors = append(report.Errors, msg)
	}
}

func (p *BatchProcessor) reportProgress(progress ProgressFunc, current, total int, status string) {
	if progress != nil {
		progress(current, total, status)
	}
}
