// Package store persists known speakers in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/maastricht-university/speakerai/meeting"
)

// ErrSpeakerNotFound is returned when updating an id that does not exist.
var ErrSpeakerNotFound = errors.New("speaker not found")

var log = logrus.WithField("component", "store")

// Store manages speaker profiles backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.WithField("path", path).Debug("speaker store opened")
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// Add inserts a new speaker and returns its id.
func (s *Store) Add(ctx context.Context, name string, features, stats, psych map[string]float64, description string) (int64, error) {
	featuresJSON, statsJSON, psychJSON, err := marshalMaps(features, stats, psych)
	if err != nil {
		return 0, err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO speakers (
            name, description, feature_vector, stats, psychometrics, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name,
		nullableString(description),
		featuresJSON,
		statsJSON,
		psychJSON,
		timestamp,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert speaker: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	log.WithFields(logrus.Fields{"id": id, "name": name}).Info("speaker added")
	return id, nil
}

// Update replaces the maps of an existing speaker. An empty description
// keeps the stored one.
func (s *Store) Update(ctx context.Context, id int64, features, stats, psych map[string]float64, description string) error {
	featuresJSON, statsJSON, psychJSON, err := marshalMaps(features, stats, psych)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE speakers
         SET feature_vector = ?, stats = ?, psychometrics = ?,
             description = COALESCE(?, description), updated_at = ?
         WHERE id = ?`,
		featuresJSON,
		statsJSON,
		psychJSON,
		nullableString(description),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update speaker %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update speaker %d: %w", id, ErrSpeakerNotFound)
	}
	log.WithField("id", id).Info("speaker updated")
	return nil
}

// ListAll returns every speaker in ascending id order.
func (s *Store) ListAll(ctx context.Context) ([]meeting.SpeakerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+speakerColumns+` FROM speakers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	defer rows.Close()

	var out []meeting.SpeakerRecord
	for rows.Next() {
		rec, err := scanSpeaker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speakers: %w", err)
	}
	return out, nil
}

// GetByID returns nil when no speaker has the id.
func (s *Store) GetByID(ctx context.Context, id int64) (*meeting.SpeakerRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+speakerColumns+` FROM speakers WHERE id = ?`, id)
	rec, err := scanSpeaker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return rec, nil
}

// FindByName returns the earliest speaker with name, or nil.
func (s *Store) FindByName(ctx context.Context, name string) (*meeting.SpeakerRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+speakerColumns+` FROM speakers WHERE name = ? ORDER BY id LIMIT 1`,
		name,
	)
	rec, err := scanSpeaker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by name: %w", err)
	}
	return rec, nil
}

func marshalMaps(features, stats, psych map[string]float64) (string, string, string, error) {
	out := make([]string, 3)
	for i, m := range []map[string]float64{features, stats, psych} {
		if m == nil {
			m = map[string]float64{}
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return "", "", "", fmt.Errorf("marshal speaker maps: %w", err)
		}
		out[i] = string(raw)
	}
	return out[0], out[1], out[2], nil
}
