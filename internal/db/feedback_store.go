package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guestflow/internal/models"
)

var ErrFeedbackNotFound = errors.New("[DB] feedback not found")

// Store owns all reads and writes for feedbacks and their aspect
// sentiments.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// AnalyzedFeedback pairs a record with its analysis for batched writes.
type AnalyzedFeedback struct {
	Record   models.FeedbackRecord
	Language string
	Analysis *models.AnalysisResult
}

// SaveFeedback inserts one feedback row and returns its id.
func (s *Store) SaveFeedback(ctx context.Context, fb *models.Feedback) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO feedbacks (text, original_language, sentiment_label, sentiment_score, hotel_name, rating, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING id`,
		fb.Text, fb.OriginalLanguage, fb.SentimentLabel, fb.SentimentScore, nullable(fb.HotelName), fb.Rating,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("[DB] failed to insert feedback: %w", err)
	}
	return id, nil
}

// SaveAspectSentiments inserts the aspect rows for one feedback.
func (s *Store) SaveAspectSentiments(ctx context.Context, feedbackID int64, aspects map[string]string) error {
	for aspect, label := range aspects {
		if aspect == "" {
			continue
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO aspect_sentiments (feedback_id, aspect_name, sentiment_label) VALUES ($1, $2, $3)`,
			feedbackID, aspect, label)
		if err != nil {
			return fmt.Errorf("[DB] failed to insert aspect sentiment: %w", err)
		}
	}
	return nil
}

// ReplaceAspectSentiments drops and rewrites the aspect rows after a
// re-analysis.
func (s *Store) ReplaceAspectSentiments(ctx context.Context, feedbackID int64, aspects map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[DB] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM aspect_sentiments WHERE feedback_id = $1`, feedbackID); err != nil {
		return fmt.Errorf("[DB] failed to clear aspect sentiments: %w", err)
	}
	for aspect, label := range aspects {
		if aspect == "" {
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO aspect_sentiments (feedback_id, aspect_name, sentiment_label) VALUES ($1, $2, $3)`,
			feedbackID, aspect, label); err != nil {
			return fmt.Errorf("[DB] failed to insert aspect sentiment: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// UpdateSentiment stores a fresh overall sentiment on an existing feedback.
func (s *Store) UpdateSentiment(ctx context.Context, feedbackID int64, sentiment models.SentimentResult) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE feedbacks SET sentiment_label = $2, sentiment_score = $3 WHERE id = $1`,
		feedbackID, sentiment.Label, sentiment.Score)
	if err != nil {
		return fmt.Errorf("[DB] failed to update sentiment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}

// SaveAnalyzedBatch writes a checkpoint of analyzed records in one
// transaction. The batch driver calls this at its commit boundaries.
func (s *Store) SaveAnalyzedBatch(ctx context.Context, items []AnalyzedFeedback) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[DB] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO feedbacks (text, original_language, sentiment_label, sentiment_score, hotel_name, rating, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, now())
			 RETURNING id`,
			item.Record.Text, item.Language,
			item.Analysis.Sentiment.Label, item.Analysis.Sentiment.Score,
			nullable(item.Record.HotelName), item.Record.Rating,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("[DB] failed to insert feedback in batch: %w", err)
		}
		for aspect, label := range item.Analysis.AspectSentiments {
			if _, err := tx.Exec(ctx,
				`INSERT INTO aspect_sentiments (feedback_id, aspect_name, sentiment_label) VALUES ($1, $2, $3)`,
				id, aspect, label); err != nil {
				return fmt.Errorf("[DB] failed to insert aspect sentiment in batch: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[DB] failed to commit batch: %w", err)
	}
	slog.Info("[DB] Saved analyzed batch", slog.Int("count", len(items)))
	return nil
}

// GetFeedback loads one feedback with its aspect rows.
func (s *Store) GetFeedback(ctx context.Context, id int64) (*models.Feedback, error) {
	fb := &models.Feedback{Aspects: map[string]string{}}
	err := s.pool.QueryRow(ctx,
		`SELECT id, text, original_language, COALESCE(sentiment_label, ''), COALESCE(sentiment_score, 0),
		        COALESCE(hotel_name, ''), rating, created_at
		 FROM feedbacks WHERE id = $1`, id,
	).Scan(&fb.ID, &fb.Text, &fb.OriginalLanguage, &fb.SentimentLabel, &fb.SentimentScore,
		&fb.HotelName, &fb.Rating, &fb.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to load feedback: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT aspect_name, COALESCE(sentiment_label, '') FROM aspect_sentiments WHERE feedback_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to load aspect sentiments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var aspect, label string
		if err := rows.Scan(&aspect, &label); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan aspect sentiment: %w", err)
		}
		fb.Aspects[aspect] = label
	}
	return fb, rows.Err()
}

// ListFeedbacks returns feedbacks newest first.
func (s *Store) ListFeedbacks(ctx context.Context, limit, offset int) ([]models.Feedback, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, original_language, COALESCE(sentiment_label, ''), COALESCE(sentiment_score, 0),
		        COALESCE(hotel_name, ''), rating, created_at
		 FROM feedbacks ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to list feedbacks: %w", err)
	}
	defer rows.Close()

	var feedbacks []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.Text, &fb.OriginalLanguage, &fb.SentimentLabel, &fb.SentimentScore,
			&fb.HotelName, &fb.Rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan feedback: %w", err)
		}
		feedbacks = append(feedbacks, fb)
	}
	return feedbacks, rows.Err()
}

// ListFeedbacksWithAspects loads feedbacks plus their aspect maps for export.
func (s *Store) ListFeedbacksWithAspects(ctx context.Context, limit, offset int) ([]models.Feedback, error) {
	feedbacks, err := s.ListFeedbacks(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range feedbacks {
		full, err := s.GetFeedback(ctx, feedbacks[i].ID)
		if err != nil {
			return nil, err
		}
		feedbacks[i].Aspects = full.Aspects
	}
	return feedbacks, nil
}

// SentimentDistribution counts feedbacks per label for the dashboard.
func (s *Store) SentimentDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(sentiment_label, ''), COUNT(*) FROM feedbacks GROUP BY sentiment_label`)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to count sentiments: %w", err)
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan sentiment count: %w", err)
		}
		if label != "" {
			dist[label] = n
		}
	}
	return dist, rows.Err()
}

// AspectSummary counts labels per aspect for the dashboard.
func (s *Store) AspectSummary(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT aspect_name, COALESCE(sentiment_label, ''), COUNT(*)
		 FROM aspect_sentiments GROUP BY aspect_name, sentiment_label`)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to summarize aspects: %w", err)
	}
	defer rows.Close()

	summary := make(map[string]map[string]int)
	for rows.Next() {
		var aspect, label string
		var n int
		if err := rows.Scan(&aspect, &label, &n); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan aspect summary: %w", err)
		}
		if summary[aspect] == nil {
			summary[aspect] = make(map[string]int)
		}
		summary[aspect][label] = n
	}
	return summary, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
