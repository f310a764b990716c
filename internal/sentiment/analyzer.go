package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"guestflow/internal/models"
)

const completionRetryAttempts = 5

var (
	completionRetryDelay = 2 * time.Second
	completionSleep      = time.Sleep
)

// CompletionClient is the one external collaborator of this package. The
// OpenAI client satisfies it; tests inject a double.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Analyzer drives the completion model for the three analysis operations.
// It owns nothing shared: the client handle is injected and its lifecycle
// belongs to the caller.
type Analyzer struct {
	client  CompletionClient
	model   string
	limiter *rate.Limiter
}

// NewAnalyzer builds an analyzer around an injected completion client.
// requestsPerSecond <= 0 disables rate limiting.
func NewAnalyzer(client CompletionClient, model string, requestsPerSecond float64) *Analyzer {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Analyzer{client: client, model: model, limiter: limiter}
}

// Analyze classifies the overall sentiment of one review.
func (a *Analyzer) Analyze(ctx context.Context, text string) (models.SentimentResult, error) {
	response, err := a.complete(ctx, buildSentimentMessages(CleanReviewText(text)), 15)
	if err != nil {
		return models.SentimentResult{}, err
	}
	label, score := ParseSentimentLabel(response)
	return models.SentimentResult{Label: label, Score: score}, nil
}

// AnalyzeWithAspects runs the full aspect-extraction prompt and normalizes
// whatever came back. The normalization stage never fails; only the model
// call itself can return an error.
func (a *Analyzer) AnalyzeWithAspects(ctx context.Context, text string) (*models.AnalysisResult, error) {
	response, err := a.complete(ctx, buildAspectMessages(CleanReviewText(text)), 600)
	if err != nil {
		return nil, err
	}
	return NormalizeAspectResponse(response), nil
}

// AnalyzeAspect rates one named aspect of a review.
func (a *Analyzer) AnalyzeAspect(ctx context.Context, text, aspect string) (models.SentimentResult, error) {
	response, err := a.complete(ctx, buildSingleAspectMessages(CleanReviewText(text), aspect), 15)
	if err != nil {
		return models.SentimentResult{}, err
	}
	label, score := normalizeLabel(response)
	return models.SentimentResult{Label: label, Score: score}, nil
}

func (a *Analyzer) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 1; attempt <= completionRetryAttempts; attempt++ {
		start := time.Now()
		resp, err = a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.model,
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: 0.1,
		})
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("[Analyzer] completion request failed, retrying...",
			slog.Int("attempt", attempt),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		if attempt < completionRetryAttempts {
			completionSleep(completionRetryDelay)
		}
	}
	if err != nil {
		return "", fmt.Errorf("[Analyzer] completion failed after %d attempts: %w", completionRetryAttempts, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("[Analyzer] completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
