package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/circuitbreaker"
	"github.com/community-pulse/backend/pkg/logger"
	"github.com/community-pulse/backend/pkg/retry"
)

const maxExcerptLen = 500

const systemPrompt = `You are a sentiment analysis expert. Analyze the sentiment of the given text and respond ONLY with a JSON object containing: sentiment (positive/negative/neutral), confidence (0-1), positive_score (0-1), negative_score (0-1), neutral_score (0-1). Scores should sum to 1.0.`

// Client classifies sentiment through a hosted chat-completion model.
// Transport and parse failures surface as errors so the caller can fall
// back to the rule-based classifier.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

// Classify sends a truncated excerpt to the chat endpoint and parses the
// strict-JSON verdict.
func (c *Client) Classify(ctx context.Context, text string) (models.SentimentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	excerpt := text
	if len(excerpt) > maxExcerptLen {
		excerpt = excerpt[:maxExcerptLen]
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Analyze sentiment: %s", excerpt),
		},
	}

	var result models.SentimentResult

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: c.temperature,
					MaxTokens:   c.maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			parsed, err := parseSentimentJSON(resp.Choices[0].Message.Content)
			if err != nil {
				return err
			}

			logger.Debug("LLM sentiment classified",
				zap.String("sentiment", parsed.Sentiment),
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			)

			result = parsed
			return nil
		})
	})
	if err != nil {
		return models.SentimentResult{}, err
	}

	return result, nil
}

// parseSentimentJSON tolerates code fences and surrounding prose around
// the JSON object, but rejects verdicts with an unknown label.
func parseSentimentJSON(content string) (models.SentimentResult, error) {
	var result models.SentimentResult

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return result, fmt.Errorf("no JSON object in model response")
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return result, fmt.Errorf("failed to parse model response: %w", err)
	}

	switch result.Sentiment {
	case "positive", "negative", "neutral":
	default:
		return result, fmt.Errorf("unexpected sentiment label %q", result.Sentiment)
	}

	return result, nil
}
