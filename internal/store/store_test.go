package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "paperbot.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDigestRoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if d, err := s.GetLatestDigest(ctx); err != nil || d != nil {
		t.Fatalf("empty store: digest=%v err=%v", d, err)
	}

	if err := s.SaveDigest(ctx, &DigestRow{
		Date: "2025-03-07", Markdown: "# papers", PaperCount: 5,
		TotalFetched: 120, TokensUsed: 900, Cost: 0.02,
	}); err != nil {
		t.Fatalf("SaveDigest: %v", err)
	}
	if err := s.SaveDigest(ctx, &DigestRow{Date: "2025-03-08", Markdown: "# more"}); err != nil {
		t.Fatalf("SaveDigest: %v", err)
	}

	d, err := s.GetDigest(ctx, "2025-03-07")
	if err != nil {
		t.Fatalf("GetDigest: %v", err)
	}
	if d == nil || d.PaperCount != 5 || d.TotalFetched != 120 {
		t.Errorf("digest = %+v", d)
	}

	latest, err := s.GetLatestDigest(ctx)
	if err != nil {
		t.Fatalf("GetLatestDigest: %v", err)
	}
	if latest == nil || latest.Date != "2025-03-08" {
		t.Errorf("latest = %+v", latest)
	}
}

func TestSaveDigestReplacesSameDay(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	s.SaveDigest(ctx, &DigestRow{Date: "2025-03-07", Markdown: "v1", PaperCount: 1})
	s.SaveDigest(ctx, &DigestRow{Date: "2025-03-07", Markdown: "v2", PaperCount: 2})

	d, err := s.GetDigest(ctx, "2025-03-07")
	if err != nil || d == nil {
		t.Fatalf("GetDigest: digest=%v err=%v", d, err)
	}
	if d.Markdown != "v2" || d.PaperCount != 2 {
		t.Errorf("digest not replaced: %+v", d)
	}
}

func TestSubscribers(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.AddSubscriber(ctx, "a@example.com"); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}
	if err := s.AddSubscriber(ctx, "b@example.com"); err != nil {
		t.Fatalf("AddSubscriber: %v", err)
	}

	subs, err := s.GetActiveSubscribers(ctx)
	if err != nil {
		t.Fatalf("GetActiveSubscribers: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subscribers = %d, want 2", len(subs))
	}

	if err := s.RemoveSubscriber(ctx, "a@example.com"); err != nil {
		t.Fatalf("RemoveSubscriber: %v", err)
	}
	subs, _ = s.GetActiveSubscribers(ctx)
	if len(subs) != 1 || subs[0].Email != "b@example.com" {
		t.Errorf("after remove: %+v", subs)
	}

	// Re-subscribing reactivates
	if err := s.AddSubscriber(ctx, "a@example.com"); err != nil {
		t.Fatalf("re-AddSubscriber: %v", err)
	}
	subs, _ = s.GetActiveSubscribers(ctx)
	if len(subs) != 2 {
		t.Errorf("after resubscribe: %d subscribers", len(subs))
	}
}

func TestRemoveUnknownSubscriber(t *testing.T) {
	s := openTemp(t)
	if err := s.RemoveSubscriber(context.Background(), "nobody@example.com"); err == nil {
		t.Error("expected error for unknown subscriber")
	}
}

func TestNewUnwritablePath(t *testing.T) {
	// A directory is not a valid database file; New must fail cleanly.
	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("expected error opening a directory as database")
	}
}

func TestRecentRunsCorruptBySource(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, day, duration_ms, fetched, picked, by_source)
		VALUES ('r1', '2025-03-07', 100, 5, 2, 'not json')
	`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].BySource != nil {
		t.Errorf("by_source = %v, want nil for corrupt column", runs[0].BySource)
	}
	if runs[0].Fetched != 5 || runs[0].Picked != 2 {
		t.Errorf("run = %+v, other columns must survive", runs[0])
	}
}

func TestRuns(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, &Run{
		Day:      "2025-03-07",
		Duration: 90 * time.Second,
		Fetched:  120,
		Picked:   10,
		BySource: map[string]int{"OpenAlex": 80, "arXiv": 40},
	})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Day != "2025-03-07" || r.Duration != 90*time.Second {
		t.Errorf("run = %+v", r)
	}
	if r.BySource["OpenAlex"] != 80 {
		t.Errorf("by_source = %v", r.BySource)
	}
}
