// Package storage provides the data collaborators of the answering pipeline:
// the read-only healthcare SQL store, query embedders and document indexes.
//
// Information Hiding:
// - SQLite driver registration and read-only connection setup
// - Row scanning and value normalization
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
)

const readOnlyDriver = "sqlite3_readonly"

var registerOnce sync.Once

// registerReadOnlyDriver registers a sqlite3 driver whose connections refuse
// writes at the engine level.
func registerReadOnlyDriver() {
	registerOnce.Do(func() {
		sql.Register(readOnlyDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				_, err := conn.Exec("PRAGMA query_only = ON", []driver.Value{})
				return err
			},
		})
	})
}

// HealthcareStore executes read-only queries against the healthcare database.
// Safe for concurrent use.
type HealthcareStore struct {
	db   *sql.DB
	path string
}

// OpenHealthcare opens an existing SQLite database in read-only mode.
func OpenHealthcare(path string) (*HealthcareStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("healthcare database %s: %w", path, err)
	}

	registerReadOnlyDriver()

	dsn := "file:" + path + "?mode=ro"
	db, err := sql.Open(readOnlyDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	return &HealthcareStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *HealthcareStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *HealthcareStore) Close() error {
	return s.db.Close()
}

// Rows is the outcome of a query: ordered column names and at most the
// requested number of rows.
type Rows struct {
	Columns   []string
	Records   []map[string]any
	Truncated bool
}

// Query runs a statement and collects up to maxRows rows. A maxRows of zero
// or less means no cap.
func (s *HealthcareStore) Query(ctx context.Context, query string, maxRows int) (Rows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Rows{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Rows{}, fmt.Errorf("read columns: %w", err)
	}

	out := Rows{Columns: columns, Records: []map[string]any{}}
	for rows.Next() {
		if maxRows > 0 && len(out.Records) == maxRows {
			out.Truncated = true
			break
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Rows{}, fmt.Errorf("scan row: %w", err)
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		out.Records = append(out.Records, record)
	}
	if err := rows.Err(); err != nil {
		return Rows{}, fmt.Errorf("iterate rows: %w", err)
	}

	return out, nil
}

// normalizeValue turns driver values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
