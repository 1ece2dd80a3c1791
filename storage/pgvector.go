package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/richinex/healthrouter/model"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PgVectorIndex searches a Postgres table with a pgvector embedding column:
// (chunk_text text, source_file text, page int, embedding vector).
type PgVectorIndex struct {
	db    *sql.DB
	table string
}

// OpenPgVectorIndex opens a Postgres connection pool for dsn. The pool
// connects on first use.
func OpenPgVectorIndex(dsn, table string) (*PgVectorIndex, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: open: %w", err)
	}
	idx, err := NewPgVectorIndex(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// NewPgVectorIndex wraps an existing database handle.
func NewPgVectorIndex(db *sql.DB, table string) (*PgVectorIndex, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("pgvector: invalid table name %q", table)
	}
	return &PgVectorIndex{db: db, table: table}, nil
}

// Name returns the backend name.
func (p *PgVectorIndex) Name() string {
	return "pgvector"
}

func (p *PgVectorIndex) searchQuery(vector []float32, k int) (string, []interface{}, error) {
	vec := pgvector.NewVector(vector)
	return sq.Select("chunk_text", "source_file", "page").
		Column(sq.Expr("1 - (embedding <=> ?) AS similarity", vec)).
		From(p.table).
		OrderByClause("embedding <=> ?", vec).
		Limit(uint64(k)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// Search returns the k nearest passages by cosine distance.
func (p *PgVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]model.Passage, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("pgvector: empty query vector")
	}
	if k <= 0 {
		k = 5
	}

	query, args, err := p.searchQuery(vector, k)
	if err != nil {
		return nil, fmt.Errorf("pgvector: build query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	passages := []model.Passage{}
	for rows.Next() {
		var (
			text       string
			sourceFile sql.NullString
			page       sql.NullInt64
			similarity float64
		)
		if err := rows.Scan(&text, &sourceFile, &page, &similarity); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		passage := model.Passage{Text: text, SourceFile: sourceFile.String, Page: -1, Score: similarity}
		if page.Valid {
			passage.Page = int(page.Int64)
		}
		passages = append(passages, passage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: search rows: %w", err)
	}

	SortPassages(passages)
	return passages, nil
}

// Close closes the connection pool.
func (p *PgVectorIndex) Close() error {
	return p.db.Close()
}

var _ Index = (*PgVectorIndex)(nil)
