// Package publisher formats and distributes the daily digest.
package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paperbot-dev/paperbot/internal/digest"
	"github.com/paperbot-dev/paperbot/pkg/notify"
)

// Publisher turns digests into messages and fans them out.
type Publisher struct {
	dispatcher *notify.Dispatcher
	email      *notify.EmailNotifier
	channels   []notify.Channel
	formatter  *notify.PaperEmailFormatter
	logger     *slog.Logger
}

// New creates a Publisher. email may be nil when only non-email channels
// are configured.
func New(dispatcher *notify.Dispatcher, email *notify.EmailNotifier, channels []notify.Channel) *Publisher {
	return &Publisher{
		dispatcher: dispatcher,
		email:      email,
		channels:   channels,
		formatter:  notify.NewPaperEmailFormatter(),
		logger:     slog.Default(),
	}
}

// Publish sends the digest to the configured channels.
func (p *Publisher) Publish(ctx context.Context, d *digest.DailyDigest) error {
	return p.dispatcher.Dispatch(ctx, p.channels, p.Format(d))
}

// PublishTo sends the digest to an explicit subscriber list, one message
// per recipient. Failed recipients are logged and skipped.
func (p *Publisher) PublishTo(ctx context.Context, d *digest.DailyDigest, recipients []string) error {
	if p.email == nil {
		return fmt.Errorf("email notifier not configured")
	}
	msg := p.Format(d)

	failed := 0
	for _, to := range recipients {
		if err := p.email.SendTo(ctx, []string{to}, msg); err != nil {
			p.logger.Error("digest email failed", "to", to, "error", err)
			failed++
			continue
		}
		p.logger.Info("digest email sent", "to", to)
	}
	if failed > 0 {
		return fmt.Errorf("failed to send %d/%d digest emails", failed, len(recipients))
	}
	return nil
}

// Format converts a DailyDigest into a notification message.
func (p *Publisher) Format(d *digest.DailyDigest) notify.Message {
	data := notify.PaperDigestData{
		Title:        "Daily Papers",
		Date:         d.Date,
		Overview:     d.Overview,
		TotalFetched: d.TotalFetched,
		TokensUsed:   d.TokensUsed,
		Cost:         d.Cost,
	}
	for _, paper := range d.Papers {
		data.Papers = append(data.Papers, notify.PaperItem{
			Title:    paper.Title,
			Summary:  paper.Summary,
			Reason:   paper.Reason,
			URL:      paper.URL,
			Venue:    paper.Venue,
			Source:   paper.Record.Source,
			DOI:      paper.DOI,
			Score:    paper.Score,
			HasScore: paper.HasScore,
		})
	}
	return p.formatter.Format(data)
}
