package analysis

import (
	"regexp"
	"strings"

	"github.com/community-pulse/backend/internal/storage/models"
)

const (
	maxEntities       = 5
	topicRelevance    = 0.8
	entityTypeMention = "mention"
)

// topicTable maps each known topic to its trigger keywords. Matching is
// case-insensitive substring containment; order is fixed so the output is
// deterministic for a given input.
var topicTable = []struct {
	topic    string
	keywords []string
}{
	{"async", []string{"async", "asyncio", "await", "asynchronous"}},
	{"FastAPI", []string{"fastapi", "fast api"}},
	{"testing", []string{"pytest", "test", "testing", "unittest"}},
	{"AI", []string{"ai", "machine learning", "ml", "deep learning", "llm", "gpt"}},
	{"data science", []string{"pandas", "numpy", "data science", "jupyter"}},
	{"web", []string{"django", "flask", "web", "api"}},
	{"python", []string{"python", "py"}},
	{"performance", []string{"performance", "optimization", "speed", "fast"}},
}

// Runs of one or more capitalized words, e.g. "Open Source" or "Guido".
var entityPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// ExtractTopics returns the topics whose keywords appear in text. Pure and
// deterministic; no ranking.
func ExtractTopics(text string) []string {
	textLower := strings.ToLower(text)

	var topics []string
	for _, entry := range topicTable {
		for _, kw := range entry.keywords {
			if strings.Contains(textLower, kw) {
				topics = append(topics, entry.topic)
				break
			}
		}
	}
	return topics
}

// ExtractEntities scans for capitalized phrases and tags the first few as
// mentions. Intentionally naive: it over- and under-matches and is treated
// as best-effort.
func ExtractEntities(text string) []models.Entity {
	matches := entityPattern.FindAllString(text, maxEntities)

	entities := make([]models.Entity, 0, len(matches))
	for _, name := range matches {
		entities = append(entities, models.Entity{
			EntityType:   entityTypeMention,
			EntityName:   name,
			MentionCount: 1,
		})
	}
	return entities
}
