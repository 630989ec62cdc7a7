package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRunOnceOrder(t *testing.T) {
	s := New()
	var order []string
	for _, name := range []string{"fetch", "digest", "publish"} {
		name := name
		s.Add(Job{Name: name, Fn: func(ctx context.Context) error {
			order = append(order, name)
			return nil
		}})
	}

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(order) != 3 || order[0] != "fetch" || order[2] != "publish" {
		t.Errorf("order = %v", order)
	}
}

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	s := New()
	ran := false
	s.Add(Job{Name: "bad", Fn: func(ctx context.Context) error {
		return fmt.Errorf("boom")
	}})
	s.Add(Job{Name: "good", Fn: func(ctx context.Context) error {
		ran = true
		return nil
	}})

	err := s.RunOnce(context.Background())
	if err == nil {
		t.Error("expected aggregate error")
	}
	if !ran {
		t.Error("later job did not run after failure")
	}
}

func TestStartRespectsContext(t *testing.T) {
	s := New()
	runs := 0
	s.Add(Job{Name: "count", Fn: func(ctx context.Context) error {
		runs++
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	// Start runs jobs once immediately; cancel should then unblock it.
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancel")
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestStop(t *testing.T) {
	s := New()
	done := make(chan struct{})
	go func() {
		s.Start(context.Background(), time.Hour)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
