package publisher

import (
	"context"
	"strings"
	"testing"

	"github.com/paperbot-dev/paperbot/internal/digest"
	"github.com/paperbot-dev/paperbot/internal/feed"
	"github.com/paperbot-dev/paperbot/internal/ranker"
	"github.com/paperbot-dev/paperbot/pkg/notify"
)

type captureNotifier struct {
	ch   notify.Channel
	msgs []notify.Message
}

func (c *captureNotifier) Send(_ context.Context, msg notify.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *captureNotifier) Channel() notify.Channel { return c.ch }

func sampleDigest() *digest.DailyDigest {
	return &digest.DailyDigest{
		Date:     "2025-03-07",
		Overview: "One pick today.",
		Papers: []digest.Paper{{
			Scored: ranker.Scored{
				Record: feed.Record{
					Title:  "A Paper",
					URL:    "https://example.org/p1",
					Venue:  "TestConf",
					Source: "arXiv",
					DOI:    "10.1/x",
				},
				Score:    0.88,
				HasScore: true,
			},
			Summary: "It does a thing.",
			Reason:  "Close to your interests.",
		}},
		TotalFetched: 30,
	}
}

func TestFormat(t *testing.T) {
	p := New(notify.NewDispatcher(), nil, nil)
	msg := p.Format(sampleDigest())

	if !strings.Contains(msg.Title, "2025-03-07") {
		t.Errorf("title = %q", msg.Title)
	}
	for _, want := range []string{"A Paper", "It does a thing.", "0.88", "arXiv"} {
		if !strings.Contains(msg.HTMLBody, want) {
			t.Errorf("html body missing %q", want)
		}
	}
	if !strings.Contains(msg.Body, "Close to your interests.") {
		t.Error("plain body missing reason")
	}
}

func TestPublishDispatches(t *testing.T) {
	dispatcher := notify.NewDispatcher()
	hook := &captureNotifier{ch: notify.ChannelWebhook}
	dispatcher.Register(hook)

	p := New(dispatcher, nil, []notify.Channel{notify.ChannelWebhook})
	if err := p.Publish(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(hook.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(hook.msgs))
	}
	if !strings.Contains(hook.msgs[0].Body, "A Paper") {
		t.Error("dispatched message missing paper")
	}
}

func TestPublishToWithoutEmail(t *testing.T) {
	p := New(notify.NewDispatcher(), nil, nil)
	if err := p.PublishTo(context.Background(), sampleDigest(), []string{"a@example.com"}); err == nil {
		t.Error("expected error without email notifier")
	}
}
