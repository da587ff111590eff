// Package db persists merged candidate records in PostgreSQL or SQLite.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ Store = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate applies pending schema migrations
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := db.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	migrations, err := loadMigrations("postgres")
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
	}
	return nil
}

// SaveCandidate stores a record and its skills in one transaction and returns the new ID
func (db *DB) SaveCandidate(ctx context.Context, input CandidateInput) (uuid.UUID, error) {
	if input.Record == nil {
		return uuid.Nil, fmt.Errorf("candidate record is nil")
	}
	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal candidate record: %w", err)
	}

	id := uuid.New()
	r := input.Record
	err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO candidates (id, name, email, phone, location, overall_confidence,
			                         experience_years, conflict_count, resume_hash, linkedin_hash,
			                         profile_url, record)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			id, r.Contact.Name, r.Contact.Email, r.Contact.Phone, r.Contact.Location,
			r.OverallConfidence, r.ExperienceYears, len(r.Conflicts),
			input.ResumeHash, input.LinkedInHash, input.profileURL(), recordJSON,
		)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, s := range skillRows(r) {
			batch.Queue(`INSERT INTO candidate_skills (candidate_id, skill, confidence) VALUES ($1, $2, $3)`,
				id, s.Name, s.Confidence)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save candidate: %w", err)
	}
	return id, nil
}

// GetCandidate retrieves a stored record by ID
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error) {
	var c Candidate
	var recordJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, resume_hash, linkedin_hash, profile_url, record, created_at
		 FROM candidates WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ResumeHash, &c.LinkedInHash, &c.ProfileURL, &recordJSON, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	c.Record = &types.CandidateRecord{}
	if err := json.Unmarshal(recordJSON, c.Record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate record: %w", err)
	}
	return &c, nil
}

// ListCandidates returns summaries, newest first
func (db *DB) ListCandidates(ctx context.Context, filter ListFilter) ([]CandidateSummary, error) {
	query := `SELECT c.id, c.name, c.email, c.location, c.overall_confidence,
	                 c.experience_years, c.conflict_count, c.created_at
	          FROM candidates c
	          WHERE c.overall_confidence >= $1`
	args := []any{filter.MinConfidence}
	if filter.Skill != "" {
		args = append(args, filter.Skill)
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM candidate_skills s
		                                  WHERE s.candidate_id = c.id AND LOWER(s.skill) = LOWER($%d))`, len(args))
	}
	args = append(args, filter.limit())
	query += fmt.Sprintf(` ORDER BY c.created_at DESC LIMIT $%d`, len(args))

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	summaries := []CandidateSummary{}
	for rows.Next() {
		var s CandidateSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Location, &s.OverallConfidence,
			&s.ExperienceYears, &s.ConflictCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return summaries, nil
}

// DeleteCandidate removes a record and its skills
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
