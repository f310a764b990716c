package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"guestflow/internal/analysis"
	"guestflow/internal/models"
)

// FeedbackStore is the persistence surface the handlers use. db.Store
// satisfies it; tests inject doubles.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, fb *models.Feedback) (int64, error)
	GetFeedback(ctx context.Context, id int64) (*models.Feedback, error)
	ListFeedbacks(ctx context.Context, limit, offset int) ([]models.Feedback, error)
	ListFeedbacksWithAspects(ctx context.Context, limit, offset int) ([]models.Feedback, error)
	UpdateSentiment(ctx context.Context, feedbackID int64, sentiment models.SentimentResult) error
	ReplaceAspectSentiments(ctx context.Context, feedbackID int64, aspects map[string]string) error
	SentimentDistribution(ctx context.Context) (map[string]int, error)
	AspectSummary(ctx context.Context) (map[string]map[string]int, error)
}

// TextAnalyzer is the slice of the sentiment analyzer the handlers call.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (models.SentimentResult, error)
	AnalyzeWithAspects(ctx context.Context, text string) (*models.AnalysisResult, error)
	AnalyzeAspect(ctx context.Context, text, aspect string) (models.SentimentResult, error)
}

// BatchRunner drives batch analysis of uploaded records.
type BatchRunner interface {
	Process(ctx context.Context, records []models.FeedbackRecord, progress analysis.ProgressFunc) *analysis.BatchReport
}

// Server bundles the collaborators the handlers need.
type Server struct {
	store    FeedbackStore
	analyzer TextAnalyzer
	batch    BatchRunner
}

func New(store FeedbackStore, analyzer TextAnalyzer, batch BatchRunner) *Server {
	return &Server{store: store, analyzer: analyzer, batch: batch}
}

// Router wires the API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	feedback := r.Group("/api/feedback")
	{
		feedback.POST("/submit", s.handleSubmitFeedback)
		feedback.POST("/batch-upload", s.handleBatchUpload)
		feedback.POST("/analyze/:id", s.handleAnalyzeFeedback)
		feedback.GET("", s.handleListFeedbacks)
	}

	analysisGroup := r.Group("/api/analysis")
	{
		analysisGroup.POST("/sentiment", s.handleAnalyzeSentiment)
		analysisGroup.POST("/aspect", s.handleAnalyzeAspect)
		analysisGroup.GET("/summary", s.handleSummary)
	}

	exportGroup := r.Group("/api/export")
	{
		exportGroup.GET("/csv", s.handleExportCSV)
		exportGroup.GET("/excel", s.handleExportExcel)
	}

	return r
}
