// Package csvstore keeps processed records in a single CSV file, the format consumed by editor import steps.
package csvstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/marmor123/mice-tracking/csvio"
	"github.com/marmor123/mice-tracking/trajectory"
)

// Store implements trajectory.RecordStore on top of a CSV file
type Store struct {
	path string
	log  logrus.FieldLogger
}

// New creates a Store for path. The file does not need to exist yet.
func New(path string, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{path: path, log: log}
}

// Path returns file path of the store
func (s *Store) Path() string {
	return s.path
}

// Load reads all records. A missing file is an empty store.
func (s *Store) Load(ctx context.Context) ([]trajectory.OutputRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []trajectory.OutputRecord{}, nil
		}
		return nil, errors.Wrapf(err, "Can't open %s", s.path)
	}
	defer file.Close()
	records, err := csvio.ReadRecords(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read %s", s.path)
	}
	return records, nil
}

// Save writes records into a temporary file next to the target and renames it over the target,
// so readers see either the previous or the new content.
func (s *Store) Save(ctx context.Context, run trajectory.Run, records []trajectory.OutputRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "Can't create temporary file in %s", dir)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := csvio.WriteRecords(tmp, records); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrap(err, "Can't sync temporary file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "Can't close temporary file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "Can't replace %s", s.path)
	}

	s.log.WithFields(logrus.Fields{
		"run_id":  run.ID.String(),
		"kind":    string(run.Kind),
		"path":    s.path,
		"records": len(records),
	}).Info("records saved")
	return nil
}
