package logging_test

import (
	"context"
	"testing"
	"time"

	"gatewatch/server/logging"
	"gatewatch/server/logging/sinks"
)

func waitForEvents(t *testing.T, sink *sinks.MemorySink, want int) []logging.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := sink.Events()
		if len(events) >= want {
			return events
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d events, got %d", want, len(sink.Events()))
	return nil
}

func TestRouterDeliversToSink(t *testing.T) {
	sink := sinks.NewMemorySink(16)
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"level": "meadow"}
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer router.Close(context.Background())

	router.Publish(context.Background(), logging.Event{
		Type:     "gameplay.target_died",
		Tick:     7,
		Actor:    logging.EntityRef{ID: "3", Kind: logging.EntityKindTarget},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
	})

	events := waitForEvents(t, sink, 1)
	got := events[0]
	if got.Type != "gameplay.target_died" {
		t.Fatalf("expected type gameplay.target_died, got %q", got.Type)
	}
	if got.Tick != 7 {
		t.Fatalf("expected tick 7, got %d", got.Tick)
	}
	if got.Time.IsZero() {
		t.Fatalf("expected router to stamp event time")
	}
	if got.Extra["level"] != "meadow" {
		t.Fatalf("expected static field to be stamped, got %v", got.Extra)
	}
}

func TestRouterFiltersBySeverity(t *testing.T) {
	sink := sinks.NewMemorySink(16)
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer router.Close(context.Background())

	router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "b", Severity: logging.SeverityError})

	events := waitForEvents(t, sink, 1)
	if len(events) != 1 || events[0].Type != "b" {
		t.Fatalf("expected only the error event, got %+v", events)
	}
}

func TestRouterFiltersByCategory(t *testing.T) {
	sink := sinks.NewMemorySink(16)
	cfg := logging.DefaultConfig()
	cfg.Categories = map[string]bool{logging.CategoryPathfind: false}
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer router.Close(context.Background())

	router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityInfo, Category: logging.CategoryPathfind})
	router.Publish(context.Background(), logging.Event{Type: "b", Severity: logging.SeverityInfo, Category: logging.CategoryGameplay})

	events := waitForEvents(t, sink, 1)
	if len(events) != 1 || events[0].Type != "b" {
		t.Fatalf("expected pathfind events to be filtered, got %+v", events)
	}
}

func TestRouterStatsCountDelivered(t *testing.T) {
	sink := sinks.NewMemorySink(16)
	router, err := logging.NewRouter(nil, logging.DefaultConfig(), []logging.NamedSink{{Name: "memory", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer router.Close(context.Background())

	for i := 0; i < 3; i++ {
		router.Publish(context.Background(), logging.Event{Type: "a", Severity: logging.SeverityInfo})
	}
	waitForEvents(t, sink, 3)

	stats := router.Stats()
	if stats.EventsTotal != 3 {
		t.Fatalf("expected 3 events recorded, got %d", stats.EventsTotal)
	}
	if stats.DroppedTotal != 0 {
		t.Fatalf("expected no drops, got %d", stats.DroppedTotal)
	}
}

func TestMemorySinkTrimsPastCapacity(t *testing.T) {
	sink := sinks.NewMemorySink(2)
	for i := 0; i < 4; i++ {
		if err := sink.Write(logging.Event{Type: logging.EventType(rune('a' + i))}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected capacity 2, got %d events", len(events))
	}
	if events[0].Type != "c" || events[1].Type != "d" {
		t.Fatalf("expected oldest events trimmed, got %+v", events)
	}
}
