// Package app wires the PaperBot pipeline: fetch, rank, summarize, render,
// persist, publish.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/paperbot-dev/paperbot/internal/digest"
	"github.com/paperbot-dev/paperbot/internal/feed"
	"github.com/paperbot-dev/paperbot/internal/publisher"
	"github.com/paperbot-dev/paperbot/internal/ranker"
	"github.com/paperbot-dev/paperbot/internal/store"
	"github.com/paperbot-dev/paperbot/pkg/llm"
	"github.com/paperbot-dev/paperbot/pkg/notify"
)

// App holds the long-lived pieces of the pipeline.
type App struct {
	cfg    Config
	store  *store.Store
	logger *slog.Logger
}

// New opens the database and returns a ready App.
func New(cfg Config) (*App, error) {
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &App{cfg: cfg, store: st, logger: slog.Default()}, nil
}

// Store exposes the underlying store, for the API server.
func (a *App) Store() *store.Store { return a.store }

// Close releases the App's resources.
func (a *App) Close() error { return a.store.Close() }

// ResolveDay returns the target day, defaulting to yesterday UTC. Papers
// indexed for a day keep trickling in, so "today" is always incomplete.
func ResolveDay(day string) string {
	if day != "" {
		return day
	}
	return time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

// FetchDay aggregates all enabled sources for one day and returns the
// deduplicated corpus.
func (a *App) FetchDay(ctx context.Context, day string) ([]feed.Record, error) {
	win, err := feed.ParseDay(day)
	if err != nil {
		return nil, err
	}

	registry := feed.DefaultRegistry()
	sources := registry.Instantiate(a.cfg.EnabledSet())
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}
	params := feed.RouteParams(registry, a.cfg.Sources.Defaults)

	a.logger.Info("fetching sources", "day", day, "sources", len(sources))
	return feed.NewAggregator(sources).FetchAll(ctx, win, params), nil
}

// RunDay executes the full pipeline for one day: fetch, rank, summarize,
// render markdown and chart, persist, and deliver to subscribers.
func (a *App) RunDay(ctx context.Context, day string) error {
	day = ResolveDay(day)
	start := time.Now()

	records, err := a.FetchDay(ctx, day)
	if err != nil {
		return err
	}
	a.logger.Info("aggregation complete", "day", day, "records", len(records))

	bySource := make(map[string]int)
	for _, rec := range records {
		bySource[rec.Source]++
	}

	picked := a.rank(ctx, records)

	d, err := a.summarize(ctx, day, picked)
	if err != nil {
		a.logger.Warn("summarization degraded", "error", err)
	}
	d.TotalFetched = len(records)
	d.BySource = bySource

	mdPath, err := digest.WriteMarkdown(d, a.cfg.OutputDir)
	if err != nil {
		return err
	}
	a.logger.Info("digest written", "path", mdPath)

	if a.cfg.Chart && len(bySource) > 0 {
		chartPath := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("sources_%s.png", day))
		if err := digest.NewChartRenderer().RenderPNG(d, chartPath); err != nil {
			a.logger.Warn("chart rendering failed", "error", err)
		} else {
			a.logger.Info("chart written", "path", chartPath)
		}
	}

	if err := a.store.SaveDigest(ctx, &store.DigestRow{
		Date:         day,
		Markdown:     digest.RenderMarkdown(d),
		PaperCount:   len(d.Papers),
		TotalFetched: d.TotalFetched,
		TokensUsed:   d.TokensUsed,
		Cost:         d.Cost,
	}); err != nil {
		a.logger.Warn("failed to save digest", "error", err)
	}

	if _, err := a.store.RecordRun(ctx, &store.Run{
		Day:      day,
		Duration: time.Since(start),
		Fetched:  len(records),
		Picked:   len(d.Papers),
		BySource: bySource,
	}); err != nil {
		a.logger.Warn("failed to record run", "error", err)
	}

	return a.deliver(ctx, d)
}

// rank selects the top K papers, degrading to head-of-list when no
// embedder is available or embedding fails.
func (a *App) rank(ctx context.Context, records []feed.Record) []ranker.Scored {
	topK := a.cfg.TopK
	if topK <= 0 {
		topK = 10
	}

	var embedder llm.Embedder
	if a.cfg.LLM.APIKey != "" && a.cfg.Profile != "" {
		var err error
		embedder, err = llm.NewEmbedder(a.cfg.LLM)
		if err != nil {
			a.logger.Warn("embedder unavailable, ranking disabled", "error", err)
		} else {
			defer embedder.Close()
		}
	}

	picked, err := ranker.New(embedder, a.cfg.Profile).TopK(ctx, records, topK)
	if err != nil {
		a.logger.Warn("ranking failed, keeping merge order", "error", err)
		picked, _ = ranker.New(nil, "").TopK(ctx, records, topK)
	}
	return picked
}

func (a *App) summarize(ctx context.Context, day string, picked []ranker.Scored) (*digest.DailyDigest, error) {
	var client llm.Client
	if a.cfg.LLM.APIKey != "" {
		var err error
		client, err = llm.NewClient(a.cfg.LLM)
		if err != nil {
			a.logger.Warn("LLM unavailable, using abstract fallbacks", "error", err)
		} else {
			defer client.Close()
		}
	}
	return digest.NewSummarizer(client, a.cfg.Profile).Summarize(ctx, day, picked)
}

// deliver sends the digest over the configured channels: the webhook when
// one is set, and email to active subscribers with a fallback to the
// configured default recipients. Without any channel the digest stays on
// disk only.
func (a *App) deliver(ctx context.Context, d *digest.DailyDigest) error {
	dispatcher := notify.NewDispatcher()
	var channels []notify.Channel

	if a.cfg.Webhook.URL != "" {
		dispatcher.Register(notify.NewWebhookNotifier(a.cfg.Webhook))
		channels = append(channels, notify.ChannelWebhook)
	}

	var email *notify.EmailNotifier
	var recipients []string
	if a.cfg.Email.Password != "" {
		email = notify.NewEmailNotifier(a.cfg.NotifyEmail())
		dispatcher.Register(email)

		subs, err := a.store.GetActiveSubscribers(ctx)
		if err != nil {
			a.logger.Warn("failed to load subscribers", "error", err)
		}
		for _, sub := range subs {
			recipients = append(recipients, sub.Email)
		}
		if len(recipients) == 0 && a.cfg.Email.To != "" {
			channels = append(channels, notify.ChannelEmail)
		}
	} else {
		a.logger.Info("SMTP not configured, skipping email delivery")
	}

	if len(channels) == 0 && len(recipients) == 0 {
		a.logger.Info("no delivery channels configured")
		return nil
	}

	pub := publisher.New(dispatcher, email, channels)
	var firstErr error
	if len(channels) > 0 {
		if err := pub.Publish(ctx, d); err != nil {
			firstErr = err
		}
	}
	if len(recipients) > 0 {
		if err := pub.PublishTo(ctx, d, recipients); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
