// Package database provides SQLite connectivity for florabridge.
//
// florabridge keeps a single local database: the outbox of readings whose
// publish failed. This package manages:
//   - Connection with WAL mode and a busy timeout
//   - Schema migrations from an embedded filesystem
//   - Lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Outbox.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and are applied in version order, each in its
// own transaction.
package database
