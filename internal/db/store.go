package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Store persists merged candidate records
type Store interface {
	SaveCandidate(ctx context.Context, input CandidateInput) (uuid.UUID, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*Candidate, error)
	ListCandidates(ctx context.Context, filter ListFilter) ([]CandidateSummary, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Open connects to the store named by databaseURL: postgres:// and postgresql://
// URLs use PostgreSQL, sqlite:// URLs, ":memory:" and bare file paths use SQLite.
// The schema is migrated before Open returns.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case databaseURL == "":
		return nil, fmt.Errorf("database URL is empty")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		database, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil
	default:
		return OpenSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	}
}

// migration is one versioned schema file
type migration struct {
	Version int
	Name    string
	SQL     string
}

// loadMigrations returns the backend's migrations sorted by version.
// Files are named NNN_description.sql.
func loadMigrations(backend string) ([]migration, error) {
	dir := "migrations/" + backend
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		content, err := fs.ReadFile(migrationFiles, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		out = append(out, migration{Version: version, Name: name, SQL: string(content)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
