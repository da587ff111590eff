package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jonathan/candidate-profiler/internal/types"
)

// sqliteTimeFormat is fixed-width so stored timestamps sort lexically
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// timeNow is replaced in tests that need stable ordering
var timeNow = func() time.Time { return time.Now().UTC() }

// SQLiteStore is a file-backed or in-memory Store for local use
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates it.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps an in-memory database shared and serialises writers
	database.SetMaxOpenConns(1)

	s := &SQLiteStore{db: database, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	migrations, err := loadMigrations("sqlite")
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("executing migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveCandidate stores a record and its skills in one transaction and returns the new ID
func (s *SQLiteStore) SaveCandidate(ctx context.Context, input CandidateInput) (uuid.UUID, error) {
	if input.Record == nil {
		return uuid.Nil, fmt.Errorf("candidate record is nil")
	}
	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshalling candidate record: %w", err)
	}

	id := uuid.New()
	r := input.Record
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (id, name, email, phone, location, overall_confidence,
			                        experience_years, conflict_count, resume_hash, linkedin_hash,
			                        profile_url, record, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id.String(), r.Contact.Name, r.Contact.Email, r.Contact.Phone, r.Contact.Location,
			r.OverallConfidence, r.ExperienceYears, len(r.Conflicts),
			input.ResumeHash, input.LinkedInHash, input.profileURL(), string(recordJSON),
			timeNow().Format(sqliteTimeFormat),
		)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO candidate_skills (candidate_id, skill, confidence) VALUES (?, ?, ?)")
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for _, skill := range skillRows(r) {
			if _, err := stmt.ExecContext(ctx, id.String(), skill.Name, skill.Confidence); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("saving candidate: %w", err)
	}
	return id, nil
}

// GetCandidate retrieves a stored record by ID
func (s *SQLiteStore) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	var (
		c          Candidate
		rawID      string
		recordJSON string
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, resume_hash, linkedin_hash, profile_url, record, created_at
		FROM candidates WHERE id = ?`, id.String(),
	).Scan(&rawID, &c.ResumeHash, &c.LinkedInHash, &c.ProfileURL, &recordJSON, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting candidate: %w", err)
	}

	if c.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parsing candidate id: %w", err)
	}
	if c.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	c.Record = &types.CandidateRecord{}
	if err := json.Unmarshal([]byte(recordJSON), c.Record); err != nil {
		return nil, fmt.Errorf("unmarshalling candidate record: %w", err)
	}
	return &c, nil
}

// ListCandidates returns summaries, newest first
func (s *SQLiteStore) ListCandidates(ctx context.Context, filter ListFilter) ([]CandidateSummary, error) {
	query := `SELECT c.id, c.name, c.email, c.location, c.overall_confidence,
	                 c.experience_years, c.conflict_count, c.created_at
	          FROM candidates c
	          WHERE c.overall_confidence >= ?`
	args := []any{filter.MinConfidence}
	if filter.Skill != "" {
		query += ` AND EXISTS (SELECT 1 FROM candidate_skills s WHERE s.candidate_id = c.id AND s.skill = ?)`
		args = append(args, filter.Skill)
	}
	query += ` ORDER BY c.created_at DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []CandidateSummary{}
	for rows.Next() {
		var (
			sum       CandidateSummary
			rawID     string
			createdAt string
		)
		if err := rows.Scan(&rawID, &sum.Name, &sum.Email, &sum.Location, &sum.OverallConfidence,
			&sum.ExperienceYears, &sum.ConflictCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		if sum.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing candidate id: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(sqliteTimeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return summaries, nil
}

// DeleteCandidate removes a record and its skills
func (s *SQLiteStore) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM candidates WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("deleting candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting candidate: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
