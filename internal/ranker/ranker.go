// Package ranker scores aggregated papers against a reader profile using
// embedding similarity and keeps the top K.
package ranker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paperbot-dev/paperbot/internal/feed"
	"github.com/paperbot-dev/paperbot/pkg/llm"
)

// Truncation limit for the embedded text of one paper. Long abstracts add
// cost without moving the similarity much.
const maxEmbedRunes = 2000

// Scored is a record with its relevance score.
type Scored struct {
	feed.Record
	Score    float64
	HasScore bool
}

// Ranker selects the papers most relevant to a reader profile.
type Ranker struct {
	embedder llm.Embedder
	profile  string
}

// New creates a Ranker. Either argument may be zero-valued; without an
// embedder or a profile, TopK degrades to head-of-list selection.
func New(embedder llm.Embedder, profile string) *Ranker {
	return &Ranker{embedder: embedder, profile: strings.TrimSpace(profile)}
}

// TopK returns the k records most similar to the reader profile, best
// first. Records beyond k are dropped. When no embedder or profile is
// configured the first k records are returned unscored, preserving the
// merge order.
func (r *Ranker) TopK(ctx context.Context, records []feed.Record, k int) ([]Scored, error) {
	if k <= 0 || len(records) == 0 {
		return nil, nil
	}
	if k > len(records) {
		k = len(records)
	}

	if r.embedder == nil || r.profile == "" {
		out := make([]Scored, k)
		for i := range out {
			out[i] = Scored{Record: records[i]}
		}
		return out, nil
	}

	texts := make([]string, 0, len(records)+1)
	texts = append(texts, r.profile)
	for _, rec := range records {
		texts = append(texts, embedText(rec))
	}

	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed papers: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	profile := normalize(vecs[0])
	scored := make([]Scored, len(records))
	for i, rec := range records {
		scored[i] = Scored{
			Record:   rec,
			Score:    dot(profile, normalize(vecs[i+1])),
			HasScore: true,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored[:k], nil
}

func embedText(rec feed.Record) string {
	text := rec.Title
	if rec.Abstract != "" {
		text += "\n\n" + rec.Abstract
	}
	if runes := []rune(text); len(runes) > maxEmbedRunes {
		text = string(runes[:maxEmbedRunes])
	}
	return text
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
