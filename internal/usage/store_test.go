package usage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "usage.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []*Event{
		{Profile: "perspective", Language: "de", Step: 1, Style: "psychologisch", Model: "gpt-4o-mini",
			Outcome: OutcomeOK, Status: 200, Latency: 120 * time.Millisecond, PromptTokens: 100, CompletionTokens: 50, CreatedAt: base},
		{Profile: "tone", Language: "en", Step: 2, Style: "warm", Model: "gpt-4o-mini",
			Outcome: OutcomeUpstream, Status: 429, Latency: 80 * time.Millisecond, CreatedAt: base.Add(time.Minute)},
		{RequestID: "req-3", Profile: "reflection", Language: "no", Step: 3, Style: "bcc",
			Outcome: OutcomeFallback, Status: 200, Latency: 40 * time.Millisecond, PromptTokens: 10, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
		if e.ID == "" {
			t.Fatal("Record should assign an ID")
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].RequestID != "req-3" || got[0].Outcome != OutcomeFallback || got[0].Step != 3 {
		t.Fatalf("unexpected newest event: %+v", got[0])
	}
	if got[1].Status != 429 || got[1].Latency != 80*time.Millisecond {
		t.Fatalf("unexpected second event: %+v", got[1])
	}
}

func TestRecordAssignsTimestamp(t *testing.T) {
	store := newTestStore(t)
	e := &Event{Profile: "perspective", Language: "de", Step: 1, Outcome: OutcomeConfig, Status: 500}
	if err := store.Record(context.Background(), e); err != nil {
		t.Fatalf("record: %v", err)
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("Record should set CreatedAt")
	}
}

func TestSummarize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize empty: %v", err)
	}
	if empty.Total != 0 {
		t.Fatalf("expected empty summary, got %+v", empty)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, e := range []*Event{
		{Outcome: OutcomeOK, Status: 200, Latency: 100 * time.Millisecond, PromptTokens: 10, CompletionTokens: 5},
		{Outcome: OutcomeOK, Status: 200, Latency: 300 * time.Millisecond, PromptTokens: 20, CompletionTokens: 5},
		{Outcome: OutcomeInternal, Status: 500, Latency: 200 * time.Millisecond},
	} {
		e.Profile, e.Language, e.Step = "perspective", "de", 1
		e.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	sum, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Total != 3 || sum.ByOutcome[OutcomeOK] != 2 || sum.ByOutcome[OutcomeInternal] != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if sum.AvgLatency != 200*time.Millisecond {
		t.Errorf("AvgLatency = %v, want 200ms", sum.AvgLatency)
	}
	if sum.TotalTokens != 40 {
		t.Errorf("TotalTokens = %d, want 40", sum.TotalTokens)
	}
	if !sum.FirstEventAt.Equal(base) || !sum.LastEventAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("unexpected range: %v .. %v", sum.FirstEventAt, sum.LastEventAt)
	}
}

func TestPing(t *testing.T) {
	if err := newTestStore(t).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
