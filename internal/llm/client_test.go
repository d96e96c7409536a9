package llm

import (
	"testing"
)

func TestParseSentimentJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{
			name:    "bare object",
			content: `{"sentiment": "positive", "confidence": 0.9, "positive_score": 0.8, "negative_score": 0.1, "neutral_score": 0.1}`,
			want:    "positive",
		},
		{
			name:    "code fenced",
			content: "```json\n{\"sentiment\": \"negative\", \"confidence\": 0.7, \"positive_score\": 0.1, \"negative_score\": 0.8, \"neutral_score\": 0.1}\n```",
			want:    "negative",
		},
		{
			name:    "surrounding prose",
			content: `Here is the analysis: {"sentiment": "neutral", "confidence": 0.6, "positive_score": 0.3, "negative_score": 0.3, "neutral_score": 0.4} as requested.`,
			want:    "neutral",
		},
		{
			name:    "no json",
			content: "The sentiment is positive.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			content: `{"sentiment": "positive",`,
			wantErr: true,
		},
		{
			name:    "unknown label",
			content: `{"sentiment": "mixed", "confidence": 0.5}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseSentimentJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSentimentJSON(%q) succeeded, want error", tt.content)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSentimentJSON returned error: %v", err)
			}
			if result.Sentiment != tt.want {
				t.Errorf("sentiment = %q, want %q", result.Sentiment, tt.want)
			}
		})
	}
}
