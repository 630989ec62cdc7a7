package digest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paperbot-dev/paperbot/internal/feed"
	"github.com/paperbot-dev/paperbot/internal/ranker"
	"github.com/paperbot-dev/paperbot/pkg/llm"
)

type fakeLLM struct {
	content string
	err     error
	calls   int
}

func (f *fakeLLM) Generate(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.content, TokensIn: 100, TokensOut: 50, Cost: 0.001}, nil
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, req *llm.Request, out any) error { return nil }
func (f *fakeLLM) Provider() llm.Provider                                            { return "fake" }
func (f *fakeLLM) Close() error                                                      { return nil }

func picked(n int) []ranker.Scored {
	out := make([]ranker.Scored, n)
	for i := range out {
		out[i] = ranker.Scored{
			Record: feed.Record{
				ID:       fmt.Sprintf("p%d", i+1),
				Title:    fmt.Sprintf("Paper %d", i+1),
				Abstract: "We study a thing and find a result.",
				URL:      fmt.Sprintf("https://example.org/p%d", i+1),
				Venue:    "TestConf",
				Source:   "OpenAlex",
			},
			Score:    0.9 - float64(i)*0.1,
			HasScore: true,
		}
	}
	return out
}

func TestSummarize(t *testing.T) {
	client := &fakeLLM{content: `{
		"overview": "Two solid papers today.",
		"papers": [
			{"index": 1, "summary": "First paper summary.", "reason": "Matches graphs."},
			{"index": 2, "summary": "Second paper summary.", "reason": ""}
		]
	}`}
	s := NewSummarizer(client, "graph neural networks")

	d, err := s.Summarize(context.Background(), "2025-03-07", picked(2))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if d.Overview != "Two solid papers today." {
		t.Errorf("overview = %q", d.Overview)
	}
	if d.Papers[0].Summary != "First paper summary." || d.Papers[0].Reason != "Matches graphs." {
		t.Errorf("paper 1 = %+v", d.Papers[0])
	}
	if d.Papers[1].Reason != "" {
		t.Errorf("paper 2 reason = %q", d.Papers[1].Reason)
	}
	if d.TokensUsed != 150 || d.Cost != 0.001 {
		t.Errorf("usage = %d tokens $%v", d.TokensUsed, d.Cost)
	}
}

func TestSummarizeMalformedJSONFallsBack(t *testing.T) {
	s := NewSummarizer(&fakeLLM{content: "not json at all"}, "")
	d, err := s.Summarize(context.Background(), "2025-03-07", picked(1))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(d.Papers[0].Summary, "We study a thing") {
		t.Errorf("fallback summary = %q", d.Papers[0].Summary)
	}
	if d.TokensUsed != 150 {
		t.Errorf("tokens = %d, usage should survive fallback", d.TokensUsed)
	}
}

func TestSummarizeLLMErrorKeepsFallbacks(t *testing.T) {
	s := NewSummarizer(&fakeLLM{err: fmt.Errorf("API returned status 500")}, "")
	d, err := s.Summarize(context.Background(), "2025-03-07", picked(2))
	if err == nil {
		t.Fatal("expected error")
	}
	if d == nil || len(d.Papers) != 2 {
		t.Fatalf("digest = %+v", d)
	}
	if d.Papers[0].Summary == "" {
		t.Error("fallback summary missing")
	}
}

func TestSummarizeWithoutClient(t *testing.T) {
	s := NewSummarizer(nil, "")
	d, err := s.Summarize(context.Background(), "2025-03-07", picked(1))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(d.Papers) != 1 || d.Papers[0].Summary == "" {
		t.Errorf("digest = %+v", d)
	}
}

func TestSummarizeIgnoresOutOfRangeIndex(t *testing.T) {
	client := &fakeLLM{content: `{"papers": [{"index": 9, "summary": "bogus"}]}`}
	s := NewSummarizer(client, "")
	d, err := s.Summarize(context.Background(), "2025-03-07", picked(1))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if strings.Contains(d.Papers[0].Summary, "bogus") {
		t.Error("out-of-range index was applied")
	}
}

func TestRenderMarkdown(t *testing.T) {
	d := &DailyDigest{
		Date:         "2025-03-07",
		Overview:     "A fine day.",
		Papers:       []Paper{{Scored: picked(1)[0], Summary: "Sum.", Reason: "Why."}},
		TotalFetched: 42,
		TokensUsed:   150,
		Cost:         0.001,
	}
	md := RenderMarkdown(d)

	for _, want := range []string{
		"# 📚 Daily Papers — 2025-03-07",
		"A fine day.",
		"**1. Paper 1**",
		"score: 0.90",
		"Sum.",
		"_Why._",
		"via OpenAlex",
		"1 papers picked from 42 fetched",
		"Tokens: 150",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteMarkdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	d := &DailyDigest{Date: "2025-03-07", Papers: []Paper{{Scored: picked(1)[0]}}}

	path, err := WriteMarkdown(d, dir)
	if err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	if filepath.Base(path) != "daily_2025-03-07.md" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "Paper 1") {
		t.Error("written digest missing content")
	}
}

func TestChartRenderPNG(t *testing.T) {
	d := &DailyDigest{
		Date:         "2025-03-07",
		TotalFetched: 120,
		BySource:     map[string]int{"OpenAlex": 80, "arXiv": 40, "CORE": 0},
	}
	path := filepath.Join(t.TempDir(), "chart.png")
	if err := NewChartRenderer().RenderPNG(d, path); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty PNG")
	}
}

func TestChartRenderPNGNoSources(t *testing.T) {
	d := &DailyDigest{Date: "2025-03-07"}
	if err := NewChartRenderer().RenderPNG(d, filepath.Join(t.TempDir(), "c.png")); err == nil {
		t.Error("expected error with no source counts")
	}
}
