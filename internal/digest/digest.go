// Package digest turns ranked papers into the daily digest: LLM summaries,
// a markdown report, and a per-source chart.
package digest

import (
	"time"

	"github.com/paperbot-dev/paperbot/internal/ranker"
)

// Paper is one entry in the daily digest.
type Paper struct {
	ranker.Scored
	Summary string `json:"summary"` // one-paragraph summary
	Reason  string `json:"reason"`  // why it matched the reader profile
}

// DailyDigest is the final output of one aggregation run.
type DailyDigest struct {
	Date         string         `json:"date"`
	Overview     string         `json:"overview"`
	Papers       []Paper        `json:"papers"`
	TotalFetched int            `json:"total_fetched"`
	BySource     map[string]int `json:"by_source"`
	GeneratedAt  time.Time      `json:"generated_at"`
	TokensUsed   int            `json:"tokens_used"`
	Cost         float64        `json:"cost"`
}
