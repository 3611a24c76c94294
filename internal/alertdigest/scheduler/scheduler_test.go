package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(time.UTC)
	err := s.Add(Job{Name: "bad", Schedule: "every now and then", Fn: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := s.Add(Job{Name: "nil", Schedule: "@hourly"}); err == nil {
		t.Fatal("expected error for missing function")
	}
}

func TestRunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)
	var order []string
	s.Add(Job{Name: "a", Schedule: "@daily", Fn: func(context.Context) error { order = append(order, "a"); return nil }})
	s.Add(Job{Name: "b", Schedule: "0 7 * * *", Fn: func(context.Context) error { order = append(order, "b"); return nil }})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRunOnceStopsOnError(t *testing.T) {
	s := NewScheduler(time.UTC)
	boom := errors.New("boom")
	called := false
	s.Add(Job{Name: "fail", Schedule: "@daily", Fn: func(context.Context) error { return boom }})
	s.Add(Job{Name: "after", Schedule: "@daily", Fn: func(context.Context) error { called = true; return nil }})

	if err := s.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if called {
		t.Fatal("jobs after a failure should not run")
	}
}

func TestStartRunsJobsUntilCancelled(t *testing.T) {
	s := NewScheduler(time.UTC)
	var runs atomic.Int32
	s.Add(Job{Name: "tick", Schedule: "@every 1s", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("job never ran")
		case <-time.After(50 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStop(t *testing.T) {
	s := NewScheduler(nil)
	s.Add(Job{Name: "noop", Schedule: "@daily", Fn: func(context.Context) error { return nil }})

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not end Start")
	}
}
