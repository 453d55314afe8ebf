package publish

import (
	"errors"
	"testing"
	"time"
)

func TestOutbox_StoresAndReplaysInOrder(t *testing.T) {
	db := openOutboxDB(t)
	next := &recordingSink{failing: true}
	ob := NewOutbox(next, db, OutboxConfig{ReplayBatch: 10})
	ctx := t.Context()

	base := time.Now().Add(-time.Hour)
	first := testReading("Fern", base)
	second := testReading("Basil", base.Add(time.Minute))

	if err := ob.Publish(ctx, "miflora", first); !errors.Is(err, ErrQueued) || !errors.Is(err, errBrokerDown) {
		t.Fatalf("Publish() error = %v, want ErrQueued wrapping errBrokerDown", err)
	}
	if err := ob.Publish(ctx, "garden", second); !errors.Is(err, ErrQueued) {
		t.Fatalf("Publish() error = %v, want ErrQueued", err)
	}

	if n, err := ob.Pending(ctx); err != nil || n != 2 {
		t.Fatalf("Pending() = %d, %v; want 2", n, err)
	}

	next.failing = false
	third := testReading("Fern", base.Add(2*time.Minute))
	if err := ob.Publish(ctx, "miflora", third); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(next.got) != 3 {
		t.Fatalf("delivered %d readings, want 3", len(next.got))
	}
	order := []struct {
		dest string
		id   string
	}{
		{"miflora", first.ID.String()},
		{"garden", second.ID.String()},
		{"miflora", third.ID.String()},
	}
	for i, want := range order {
		got := next.got[i]
		if got.destination != want.dest || got.reading.ID.String() != want.id {
			t.Errorf("delivery %d = %s/%s, want %s/%s", i, got.destination, got.reading.ID, want.dest, want.id)
		}
	}

	replayed := next.got[0].reading
	if replayed.Device != "Fern" || replayed.Firmware != "3.2.1" || len(replayed.Values) != 5 {
		t.Errorf("replayed reading = %+v", replayed)
	}
	if !replayed.Timestamp.Equal(first.Timestamp) {
		t.Errorf("replayed timestamp = %v, want %v", replayed.Timestamp, first.Timestamp)
	}

	if n, _ := ob.Pending(ctx); n != 0 {
		t.Errorf("Pending() = %d after replay, want 0", n)
	}
}

func TestOutbox_ReplayStopsAtFirstFailure(t *testing.T) {
	db := openOutboxDB(t)
	next := &recordingSink{failing: true}
	ob := NewOutbox(next, db, OutboxConfig{})
	ctx := t.Context()

	for i := range 3 {
		r := testReading("Fern", time.Now().Add(time.Duration(i)*time.Second))
		if err := ob.Publish(ctx, "miflora", r); !errors.Is(err, ErrQueued) {
			t.Fatalf("Publish() error = %v", err)
		}
	}

	// Each Publish tries one replay before the new reading.
	if next.calls != 5 {
		t.Errorf("sink called %d times, want 5", next.calls)
	}

	sent, err := ob.Replay(ctx)
	if sent != 0 || !errors.Is(err, errBrokerDown) {
		t.Errorf("Replay() = %d, %v; want 0, errBrokerDown", sent, err)
	}

	var attempts int
	if err := db.QueryRowContext(ctx, `SELECT attempts FROM outbox ORDER BY created_at LIMIT 1`).Scan(&attempts); err != nil {
		t.Fatal(err)
	}
	if attempts != 4 {
		t.Errorf("attempts on oldest row = %d, want 4", attempts)
	}
}

func TestOutbox_ReplayBatchLimit(t *testing.T) {
	db := openOutboxDB(t)
	next := &recordingSink{failing: true}
	ob := NewOutbox(next, db, OutboxConfig{ReplayBatch: 2})
	ctx := t.Context()

	for i := range 5 {
		ob.Publish(ctx, "miflora", testReading("Fern", time.Now().Add(time.Duration(i)*time.Second))) //nolint:errcheck // queued
	}

	next.failing = false
	sent, err := ob.Replay(ctx)
	if err != nil || sent != 2 {
		t.Errorf("Replay() = %d, %v; want 2, nil", sent, err)
	}
	if n, _ := ob.Pending(ctx); n != 3 {
		t.Errorf("Pending() = %d, want 3", n)
	}
}

func TestOutbox_DropsExpiredReadings(t *testing.T) {
	db := openOutboxDB(t)
	next := &recordingSink{failing: true}
	logger := &captureLogger{}
	ob := NewOutbox(next, db, OutboxConfig{MaxAge: time.Hour})
	ob.SetLogger(logger)
	ctx := t.Context()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ob.now = func() time.Time { return now }

	old := testReading("Fern", now.Add(-2*time.Hour))
	if err := ob.Publish(ctx, "miflora", old); !errors.Is(err, ErrQueued) {
		t.Fatalf("Publish() error = %v", err)
	}

	next.failing = false
	if err := ob.Publish(ctx, "miflora", testReading("Fern", now)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(next.got) != 1 || next.got[0].reading.ID == old.ID {
		t.Errorf("expired reading was replayed: %d deliveries", len(next.got))
	}

	found := false
	for _, w := range logger.warns {
		if w == "dropped expired readings from outbox" {
			found = true
		}
	}
	if !found {
		t.Errorf("no expiry warning logged: %v", logger.warns)
	}
}

func TestOutbox_DuplicateStoreCountsAttempt(t *testing.T) {
	db := openOutboxDB(t)
	ob := NewOutbox(&recordingSink{failing: true}, db, OutboxConfig{})
	ctx := t.Context()

	r := testReading("Fern", time.Now())
	for range 2 {
		if err := ob.store(ctx, "miflora", r, errBrokerDown); err != nil {
			t.Fatalf("store() error = %v", err)
		}
	}

	if n, _ := ob.Pending(ctx); n != 1 {
		t.Errorf("Pending() = %d, want 1", n)
	}
}
