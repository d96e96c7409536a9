package analysis

import (
	"context"
	"strings"

	"github.com/community-pulse/backend/internal/storage/models"
)

// Classifier produces a sentiment verdict for a piece of text. The hosted
// model client and the rule-based counter both satisfy it; selection
// happens at the call site based on configuration.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.SentimentResult, error)
}

var positiveWords = []string{"great", "amazing", "excellent", "love", "awesome", "fantastic", "good", "best"}

var negativeWords = []string{"bad", "poor", "terrible", "hate", "awful", "worst", "disappointing"}

// RuleBased counts polarity cue words and maps the majority to one of
// three fixed score templates. It never fails, which makes it the fallback
// for the hosted-model path.
type RuleBased struct{}

func (RuleBased) Classify(_ context.Context, text string) (models.SentimentResult, error) {
	textLower := strings.ToLower(text)

	posCount := 0
	for _, w := range positiveWords {
		if strings.Contains(textLower, w) {
			posCount++
		}
	}
	negCount := 0
	for _, w := range negativeWords {
		if strings.Contains(textLower, w) {
			negCount++
		}
	}

	switch {
	case posCount > negCount:
		return models.SentimentResult{
			Sentiment:     "positive",
			Confidence:    0.7,
			PositiveScore: 0.7,
			NegativeScore: 0.2,
			NeutralScore:  0.1,
		}, nil
	case negCount > posCount:
		return models.SentimentResult{
			Sentiment:     "negative",
			Confidence:    0.7,
			PositiveScore: 0.2,
			NegativeScore: 0.7,
			NeutralScore:  0.1,
		}, nil
	default:
		return models.SentimentResult{
			Sentiment:     "neutral",
			Confidence:    0.6,
			PositiveScore: 0.3,
			NegativeScore: 0.3,
			NeutralScore:  0.4,
		}, nil
	}
}
