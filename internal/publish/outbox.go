package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/florabridge/internal/infrastructure/database"
	"github.com/nerrad567/florabridge/internal/miflora"
	"github.com/nerrad567/florabridge/internal/polling"
)

// DefaultReplayBatch is used when OutboxConfig.ReplayBatch is zero.
const DefaultReplayBatch = 50

// OutboxConfig configures an Outbox.
type OutboxConfig struct {
	// ReplayBatch caps the stored readings replayed before each new publish.
	ReplayBatch int

	// MaxAge drops stored readings older than this. Zero keeps them forever.
	MaxAge time.Duration
}

// Outbox wraps a sink and stores readings it failed to deliver.
//
// Before each publish the oldest stored readings are replayed through the
// wrapped sink. Replay stops at the first failure so ordering is kept.
//
// Thread Safety: Publish is called from the single polling loop. The
// underlying *database.DB is safe for concurrent use.
type Outbox struct {
	next   polling.Sink
	db     *database.DB
	cfg    OutboxConfig
	logger Logger
	now    func() time.Time
}

// NewOutbox creates an Outbox over db, which must already be migrated.
func NewOutbox(next polling.Sink, db *database.DB, cfg OutboxConfig) *Outbox {
	if cfg.ReplayBatch <= 0 {
		cfg.ReplayBatch = DefaultReplayBatch
	}
	return &Outbox{
		next:   next,
		db:     db,
		cfg:    cfg,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for outbox events.
func (o *Outbox) SetLogger(logger Logger) {
	o.logger = logger
}

// Publish implements polling.Sink.
//
// Returns:
//   - nil if r was delivered
//   - an error wrapping ErrQueued if delivery failed and r was stored
//   - the delivery and storage errors joined if r could not be stored either
func (o *Outbox) Publish(ctx context.Context, destination string, r *miflora.Reading) error {
	if err := o.prune(ctx); err != nil {
		o.logger.Warn("pruning outbox failed", "error", err)
	}
	if _, err := o.Replay(ctx); err != nil {
		o.logger.Debug("outbox replay stopped", "error", err)
	}

	err := o.next.Publish(ctx, destination, r)
	if err == nil {
		return nil
	}

	if storeErr := o.store(ctx, destination, r, err); storeErr != nil {
		return errors.Join(err, fmt.Errorf("storing reading in outbox: %w", storeErr))
	}
	return fmt.Errorf("%w: %w", ErrQueued, err)
}

type outboxRow struct {
	id          string
	destination string
	payload     string
}

// Replay sends up to ReplayBatch stored readings, oldest first, and deletes
// each one once delivered. It returns how many were delivered.
func (o *Outbox) Replay(ctx context.Context) (int, error) {
	rows, err := o.oldest(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, row := range rows {
		var r miflora.Reading
		if err := json.Unmarshal([]byte(row.payload), &r); err != nil {
			o.logger.Warn("dropping unreadable outbox entry", "id", row.id, "error", err)
			if err := o.delete(ctx, row.id); err != nil {
				return sent, err
			}
			continue
		}

		if err := o.next.Publish(ctx, row.destination, &r); err != nil {
			if markErr := o.markFailed(ctx, row.id, err); markErr != nil {
				return sent, errors.Join(err, markErr)
			}
			return sent, err
		}

		if err := o.delete(ctx, row.id); err != nil {
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		o.logger.Info("replayed stored readings", "count", sent)
	}
	return sent, nil
}

// Pending returns the number of stored readings.
func (o *Outbox) Pending(ctx context.Context) (int, error) {
	var n int
	if err := o.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting outbox: %w", err)
	}
	return n, nil
}

func (o *Outbox) oldest(ctx context.Context) ([]outboxRow, error) {
	rows, err := o.db.QueryContext(ctx,
		`SELECT id, destination, payload FROM outbox ORDER BY created_at, rowid LIMIT ?`,
		o.cfg.ReplayBatch)
	if err != nil {
		return nil, fmt.Errorf("querying outbox: %w", err)
	}
	defer rows.Close()

	var out []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.destination, &row.payload); err != nil {
			return nil, fmt.Errorf("scanning outbox row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outbox: %w", err)
	}
	return out, nil
}

func (o *Outbox) store(ctx context.Context, destination string, r *miflora.Reading, cause error) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding reading: %w", err)
	}

	_, err = o.db.ExecContext(ctx,
		`INSERT INTO outbox (id, destination, device, payload, created_at, last_error)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET attempts = attempts + 1, last_error = excluded.last_error`,
		r.ID.String(), destination, r.Device, string(payload), r.Timestamp.Unix(), cause.Error())
	if err != nil {
		return fmt.Errorf("inserting outbox row: %w", err)
	}

	o.logger.Warn("reading stored for later delivery", "device", r.Device, "id", r.ID.String())
	return nil
}

func (o *Outbox) markFailed(ctx context.Context, id string, cause error) error {
	_, err := o.db.ExecContext(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = ? WHERE id = ?`,
		cause.Error(), id)
	if err != nil {
		return fmt.Errorf("updating outbox row: %w", err)
	}
	return nil
}

func (o *Outbox) delete(ctx context.Context, id string) error {
	if _, err := o.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting outbox row: %w", err)
	}
	return nil
}

func (o *Outbox) prune(ctx context.Context) error {
	if o.cfg.MaxAge <= 0 {
		return nil
	}

	cutoff := o.now().Add(-o.cfg.MaxAge).Unix()
	res, err := o.db.ExecContext(ctx, `DELETE FROM outbox WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("pruning outbox: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		o.logger.Warn("dropped expired readings from outbox", "count", n, "max_age", o.cfg.MaxAge.String())
	}
	return nil
}
