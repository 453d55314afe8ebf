package publish

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/florabridge/internal/infrastructure/database"
	"github.com/nerrad567/florabridge/internal/miflora"
	"github.com/nerrad567/florabridge/migrations"
)

var errBrokerDown = errors.New("broker down")

func testReading(device string, ts time.Time) *miflora.Reading {
	return miflora.NewReading(device, "Fern Pot", "Living-Room", "C4:7C:8D:60:E4:21", "3.2.1", ts, []miflora.Value{
		{Key: miflora.Light, Value: 1234},
		{Key: miflora.Temperature, Value: 21.37},
		{Key: miflora.Moisture, Value: 42},
		{Key: miflora.Conductivity, Value: 350},
		{Key: miflora.Battery, Value: 97},
	})
}

type published struct {
	destination string
	reading     *miflora.Reading
}

// recordingSink records readings and fails while failing is set.
type recordingSink struct {
	failing bool
	got     []published
	calls   int
}

func (s *recordingSink) Publish(_ context.Context, destination string, r *miflora.Reading) error {
	s.calls++
	if s.failing {
		return errBrokerDown
	}
	s.got = append(s.got, published{destination: destination, reading: r})
	return nil
}

func openOutboxDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(t.Context(), database.Config{
		Path:        filepath.Join(t.TempDir(), "outbox.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(t.Context(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

type captureLogger struct {
	warns []string
}

func (l *captureLogger) Debug(string, ...any)      {}
func (l *captureLogger) Info(string, ...any)       {}
func (l *captureLogger) Warn(msg string, _ ...any) { l.warns = append(l.warns, msg) }
func (l *captureLogger) Error(string, ...any)      {}
