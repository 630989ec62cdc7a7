package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paperbot-dev/paperbot/internal/ranker"
	"github.com/paperbot-dev/paperbot/pkg/llm"
)

// Summarizer builds the digest body from ranked papers. With no LLM client
// it falls back to truncated abstracts.
type Summarizer struct {
	client  llm.Client
	profile string
}

// NewSummarizer creates a Summarizer; client may be nil.
func NewSummarizer(client llm.Client, profile string) *Summarizer {
	return &Summarizer{client: client, profile: profile}
}

type summaryItem struct {
	Index   int    `json:"index"`
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

type summaryResult struct {
	Overview string        `json:"overview"`
	Papers   []summaryItem `json:"papers"`
}

// Summarize produces a DailyDigest for the given day from ranked papers.
// LLM failures degrade to abstract fallbacks rather than erroring; the
// digest always comes back with one Paper per input.
func (s *Summarizer) Summarize(ctx context.Context, day string, picked []ranker.Scored) (*DailyDigest, error) {
	d := &DailyDigest{
		Date:        day,
		Papers:      make([]Paper, len(picked)),
		GeneratedAt: time.Now(),
	}
	for i, p := range picked {
		d.Papers[i] = Paper{Scored: p, Summary: fallbackSummary(p)}
	}
	if s.client == nil || len(picked) == 0 {
		return d, nil
	}

	resp, err := s.client.Generate(ctx, &llm.Request{
		System:   summarizerSystemPrompt,
		Messages: []llm.Message{{Role: "user", Content: s.buildPrompt(day, picked)}},
		JSONMode: true,
	})
	if err != nil {
		return d, fmt.Errorf("LLM summarization failed: %w", err)
	}
	d.TokensUsed = resp.TokensIn + resp.TokensOut
	d.Cost = resp.Cost

	var result summaryResult
	if err := json.Unmarshal([]byte(resp.Content), &result); err != nil {
		// Keep the abstract fallbacks
		return d, nil
	}

	d.Overview = strings.TrimSpace(result.Overview)
	for _, item := range result.Papers {
		i := item.Index - 1
		if i < 0 || i >= len(d.Papers) {
			continue
		}
		if sum := strings.TrimSpace(item.Summary); sum != "" {
			d.Papers[i].Summary = sum
		}
		d.Papers[i].Reason = strings.TrimSpace(item.Reason)
	}
	return d, nil
}

func (s *Summarizer) buildPrompt(day string, picked []ranker.Scored) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Date: %s\n", day)
	if s.profile != "" {
		fmt.Fprintf(&sb, "Reader profile: %s\n", s.profile)
	}
	sb.WriteString("\nPapers:\n")
	for i, p := range picked {
		abstract := p.Abstract
		if runes := []rune(abstract); len(runes) > 1200 {
			abstract = string(runes[:1200]) + "..."
		}
		fmt.Fprintf(&sb, "---\n[%d] Title: %s\nVenue: %s\nAbstract: %s\n",
			i+1, p.Title, p.Venue, abstract)
	}
	return sb.String()
}

func fallbackSummary(p ranker.Scored) string {
	abstract := strings.TrimSpace(p.Abstract)
	if abstract == "" {
		return ""
	}
	if runes := []rune(abstract); len(runes) > 300 {
		return string(runes[:300]) + "..."
	}
	return abstract
}

const summarizerSystemPrompt = `You are an editor producing a daily research paper digest for one reader.

For each paper in the list:
1. Write a 2-3 sentence summary of what the paper does and finds. Plain language, no hype.
2. If a reader profile is given, write one short sentence on why this paper matches it. Leave "reason" empty if the match is weak.

Also write a 2-4 sentence "overview" of the day's picks as a whole.

Output JSON only:
{
  "overview": "...",
  "papers": [
    {"index": 1, "summary": "...", "reason": "..."}
  ]
}
The "index" field must match the [N] number of the paper in the input.`
