package collector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxContentLen = 1000

var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeContent strips HTML markup (RSS summaries and article
// descriptions arrive as fragments), collapses whitespace, and truncates
// to the common content cap.
func normalizeContent(raw string) string {
	text := raw
	if strings.Contains(raw, "<") {
		text = stripHTML(raw)
	}

	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) > maxContentLen {
		text = text[:maxContentLen]
	}
	return text
}

func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Text()
}
