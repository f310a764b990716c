package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"guestflow/internal/db"
	"guestflow/internal/export"
	"guestflow/internal/ingest"
	"guestflow/internal/language"
	"guestflow/internal/models"
)

const maxUploadBytes = 20 << 20

type submitRequest struct {
	Text      string   `json:"text"`
	HotelName string   `json:"hotel_name"`
	Rating    *float64 `json:"rating"`
}

func (s *Server) handleSubmitFeedback(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "feedback text must not be empty"})
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		req.Rating = nil
	}

	fb := &models.Feedback{
		Text:             text,
		OriginalLanguage: language.Detect(text),
		HotelName:        strings.TrimSpace(req.HotelName),
		Rating:           req.Rating,
	}
	id, err := s.store.SaveFeedback(c.Request.Context(), fb)
	if err != nil {
		slog.Error("[Server] failed to save feedback", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}
	fb.ID = id
	c.JSON(http.StatusCreated, gin.H{"feedback": fb})
}

// handleBatchUpload parses an uploaded file and streams per-item analysis
// progress as server-sent events. Parse and schema failures end the request
// before the stream starts; per-item analysis failures never do.
func (s *Server) handleBatchUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing uploaded file"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	records, stats, err := ingest.ParseUpload(data, fileHeader.Filename)
	if err != nil {
		var schemaErr *ingest.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":            "could not identify the review column",
				"expected_columns": schemaErr.Expected,
				"actual_headers":   schemaErr.Headers,
			})
		case errors.Is(err, ingest.ErrEmptyUpload), errors.Is(err, ingest.ErrNoValidRecords):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse upload: %v", err)})
		}
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	progress := func(current, total int, status string) {
		writeSSE(c, gin.H{"current": current, "total": total, "status": status})
	}
	report := s.batch.Process(c.Request.Context(), records, progress)
	writeSSE(c, gin.H{"report": report, "stats": stats, "status": "done"})
}

func writeSSE(c *gin.Context, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", raw)
	c.Writer.Flush()
}

func (s *Server) handleAnalyzeFeedback(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	ctx := c.Request.Context()
	fb, err := s.store.GetFeedback(ctx, id)
	if errors.Is(err, db.ErrFeedbackNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feedback"})
		return
	}

	result, err := s.analyzer.AnalyzeWithAspects(ctx, fb.Text)
	if err != nil {
		slog.Error("[Server] analysis failed",
			slog.Int64("feedback_id", id),
			slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis model unavailable"})
		return
	}

	if err := s.store.UpdateSentiment(ctx, id, result.Sentiment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store analysis"})
		return
	}
	if err := s.store.ReplaceAspectSentiments(ctx, id, result.AspectSentiments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store aspect sentiments"})
		return
	}

	fb.SentimentLabel = result.Sentiment.Label
	fb.SentimentScore = result.Sentiment.Score
	fb.Aspects = result.AspectSentiments
	c.JSON(http.StatusOK, gin.H{"feedback": fb, "analysis": result})
}

func (s *Server) handleListFeedbacks(c *gin.Context) {
	limit := parseIntDefault(c.Query("limit"), 50)
	offset := parseIntDefault(c.Query("offset"), 0)

	feedbacks, err := s.store.ListFeedbacks(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedbacks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedbacks": feedbacks, "count": len(feedbacks)})
}

type analyzeTextRequest struct {
	Text   string `json:"text"`
	Aspect string `json:"aspect"`
}

func (s *Server) handleAnalyzeSentiment(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must not be empty"})
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis model unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sentiment": result,
		"language":  language.Detect(req.Text),
	})
}

func (s *Server) handleAnalyzeAspect(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text must not be empty"})
		return
	}
	if strings.TrimSpace(req.Aspect) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aspect must not be empty"})
		return
	}

	result, err := s.analyzer.AnalyzeAspect(c.Request.Context(), req.Text, req.Aspect)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis model unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"aspect": req.Aspect, "sentiment": result})
}

func (s *Server) handleSummary(c *gin.Context) {
	ctx := c.Request.Context()
	distribution, err := s.store.SentimentDistribution(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	aspects, err := s.store.AspectSummary(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sentiment_distribution": distribution,
		"aspect_summary":         aspects,
	})
}

func (s *Server) handleExportCSV(c *gin.Context) {
	feedbacks, err := s.store.ListFeedbacksWithAspects(c.Request.Context(), parseIntDefault(c.Query("limit"), 1000), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feedbacks"})
		return
	}
	data, err := export.FeedbacksToCSV(feedbacks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="feedbacks.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (s *Server) handleExportExcel(c *gin.Context) {
	feedbacks, err := s.store.ListFeedbacksWithAspects(c.Request.Context(), parseIntDefault(c.Query("limit"), 1000), 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feedbacks"})
		return
	}
	data, err := export.FeedbacksToExcel(feedbacks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render export"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="feedbacks.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
