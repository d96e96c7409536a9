package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

// Collector fetches raw items from one external source and returns them
// already normalized. Implementations must not let a source failure
// escape: the runner treats an error as zero results for that source.
type Collector interface {
	Source() string
	Collect(ctx context.Context) ([]models.Post, error)
}

const requestTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// searchQuery picks the most specific configured keyword for sources that
// take a free-text query instead of a tag.
func searchQuery(keywords []string) string {
	best := ""
	for _, kw := range keywords {
		if len(kw) > len(best) {
			best = kw
		}
	}
	return best
}
