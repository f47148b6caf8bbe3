package comparables

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

// Supported SQL drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore keeps comparables in SQLite or PostgreSQL. Money is stored as
// decimal text so no precision is lost.
type SQLStore struct {
	conn   *sql.DB
	driver string
}

// OpenSQLStore opens the database and creates the schema if needed
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.Config("comparables dsn is required for "+driver, nil)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Store("failed to open comparables database", err)
	}

	if driver == DriverSQLite {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA synchronous=NORMAL",
			"PRAGMA busy_timeout=5000",
		}
		for _, pragma := range pragmas {
			if _, err := conn.Exec(pragma); err != nil {
				_ = conn.Close()
				return nil, errors.Store("failed to set pragma", err)
			}
		}
	}

	s := &SQLStore{conn: conn, driver: driver}
	if err := s.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, errors.Store("failed to initialize comparables schema", err)
	}
	return s, nil
}

func (s *SQLStore) initializeSchema() error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS comparable_projects (
			%s,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			location TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			size DOUBLE PRECISION NOT NULL,
			actual_cost TEXT NOT NULL,
			cost_per_sqft TEXT NOT NULL
		)`, seq)

	if _, err := s.conn.Exec(schema); err != nil {
		return err
	}
	_, err := s.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_comparables_category ON comparable_projects(category)`)
	return err
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Insert appends a comparable. A missing ID is generated.
func (s *SQLStore) Insert(ctx context.Context, p types.ComparableProject) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p = withCostPerSqft(p)

	query := s.rebind(`
		INSERT INTO comparable_projects (id, title, category, location, completed_at, size, actual_cost, cost_per_sqft)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.conn.ExecContext(ctx, query,
		p.ID,
		p.Title,
		string(p.Category),
		p.Location,
		p.CompletedAt.UTC().Format(time.RFC3339),
		p.Size,
		p.ActualCost.String(),
		p.CostPerSqft.String(),
	)
	if err != nil {
		return "", errors.Store("failed to insert comparable "+p.ID, err)
	}
	return p.ID, nil
}

// ByCategory returns the category's comparables in insertion order
func (s *SQLStore) ByCategory(ctx context.Context, category types.Category) ([]types.ComparableProject, error) {
	query := s.rebind(`
		SELECT id, title, category, location, completed_at, size, actual_cost, cost_per_sqft
		FROM comparable_projects
		WHERE category = ?
		ORDER BY seq
	`)
	rows, err := s.conn.QueryContext(ctx, query, string(category))
	if err != nil {
		return nil, errors.Store("failed to query comparables", err)
	}
	defer rows.Close()

	var out []types.ComparableProject
	for rows.Next() {
		var (
			p                         types.ComparableProject
			cat, completed, cost, cps string
		)
		if err := rows.Scan(&p.ID, &p.Title, &cat, &p.Location, &completed, &p.Size, &cost, &cps); err != nil {
			return nil, errors.Store("failed to scan comparable", err)
		}
		p.Category = types.Category(cat)
		if p.CompletedAt, err = time.Parse(time.RFC3339, completed); err != nil {
			return nil, errors.Store("bad completed_at for "+p.ID, err)
		}
		if p.ActualCost, err = decimal.NewFromString(cost); err != nil {
			return nil, errors.Store("bad actual_cost for "+p.ID, err)
		}
		if p.CostPerSqft, err = decimal.NewFromString(cps); err != nil {
			return nil, errors.Store("bad cost_per_sqft for "+p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store("failed to read comparables", err)
	}
	return out, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
