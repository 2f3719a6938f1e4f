// Package sqlite keeps processed records and run history in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/marmor123/mice-tracking/trajectory"
)

// Store implements trajectory.RecordStore
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens (or creates) the database at path and applies pending migrations.
func Open(path string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open database %s", path)
	}
	// One writer at a time; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't set busy timeout")
	}
	s := &Store{db: db, log: log}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns all records ordered by (Frame, ClassID)
func (s *Store) Load(ctx context.Context) ([]trajectory.OutputRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame, label, class_id, x, y
		FROM track_points
		ORDER BY frame, class_id`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query track points")
	}
	defer rows.Close()

	records := make([]trajectory.OutputRecord, 0)
	for rows.Next() {
		var record trajectory.OutputRecord
		if err := rows.Scan(&record.Frame, &record.ID, &record.ClassID, &record.X, &record.Y); err != nil {
			return nil, errors.Wrap(err, "Can't scan track point")
		}
		records = append(records, record)
	}
	return records, errors.Wrap(rows.Err(), "Can't iterate track points")
}

// Save replaces all stored records and appends run to the run history in a single transaction.
func (s *Store) Save(ctx context.Context, run trajectory.Run, records []trajectory.OutputRecord) (err error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "Can't begin transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, kind, class_id, start_frame, grace_frames, threshold, record_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), string(run.Kind), run.ClassID, run.StartFrame, run.GraceFrames, run.Threshold,
		len(records), run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrapf(err, "Can't insert run %s", run.ID)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM track_points`); err != nil {
		return errors.Wrap(err, "Can't clear track points")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO track_points (frame, class_id, label, x, y)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "Can't prepare insert")
	}
	defer stmt.Close()
	for _, record := range records {
		if _, err = stmt.ExecContext(ctx, record.Frame, record.ClassID, record.ID, record.X, record.Y); err != nil {
			return errors.Wrapf(err, "Can't insert record of class %d at frame %d", record.ClassID, record.Frame)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "Can't commit transaction")
	}

	s.log.WithFields(logrus.Fields{
		"run_id":  run.ID.String(),
		"kind":    string(run.Kind),
		"records": len(records),
	}).Info("records saved")
	return nil
}

// Runs returns the run history, oldest first
func (s *Store) Runs(ctx context.Context) ([]trajectory.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, kind, class_id, start_frame, grace_frames, threshold, created_at
		FROM runs
		ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "Can't query runs")
	}
	defer rows.Close()

	runs := make([]trajectory.Run, 0)
	for rows.Next() {
		var (
			run       trajectory.Run
			id        string
			kind      string
			createdAt string
		)
		if err := rows.Scan(&id, &kind, &run.ClassID, &run.StartFrame, &run.GraceFrames, &run.Threshold, &createdAt); err != nil {
			return nil, errors.Wrap(err, "Can't scan run")
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "Can't parse run id %q", id)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, errors.Wrapf(err, "Can't parse creation time of run %s", id)
		}
		run.Kind = trajectory.RunKind(kind)
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "Can't iterate runs")
}
