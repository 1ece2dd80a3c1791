package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Table describes one table of the healthcare store.
type Table struct {
	Name    string
	Columns []string
}

// Schema is the introspected table layout.
type Schema struct {
	Tables []Table
}

// DefaultSchema is the layout of the healthcare database the prompts are
// written for.
func DefaultSchema() Schema {
	return Schema{Tables: []Table{
		{Name: "patients", Columns: []string{"patient_id", "name", "age", "gender"}},
		{Name: "visits", Columns: []string{"visit_id", "patient_id", "date", "reason"}},
		{Name: "prescriptions", Columns: []string{"id", "visit_id", "med_id", "dosage"}},
		{Name: "medications", Columns: []string{"med_id", "name", "category"}},
	}}
}

// Schema reads table and column names from sqlite_master.
func (s *HealthcareStore) Schema(ctx context.Context) (Schema, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return Schema{}, fmt.Errorf("list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return Schema{}, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Schema{}, fmt.Errorf("list tables: %w", err)
	}

	var schema Schema
	for _, name := range names {
		cols, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?) ORDER BY cid`, name)
		if err != nil {
			return Schema{}, fmt.Errorf("describe %s: %w", name, err)
		}
		table := Table{Name: name}
		for cols.Next() {
			var col string
			if err := cols.Scan(&col); err != nil {
				cols.Close()
				return Schema{}, fmt.Errorf("scan column of %s: %w", name, err)
			}
			table.Columns = append(table.Columns, col)
		}
		cols.Close()
		schema.Tables = append(schema.Tables, table)
	}
	return schema, nil
}

// Describe renders the schema as "table(col, col)" lines for prompts.
func (s Schema) Describe() string {
	var b strings.Builder
	for _, t := range s.Tables {
		fmt.Fprintf(&b, "- %s(%s)\n", t.Name, strings.Join(t.Columns, ", "))
	}
	return b.String()
}

// genericColumns are too common in prose to signal a database question.
var genericColumns = map[string]bool{
	"id": true, "name": true, "date": true, "type": true,
}

// Vocabulary returns the lowercase entity words of the schema: table names,
// their singular forms and the distinctive column names.
func (s Schema) Vocabulary() []string {
	seen := make(map[string]bool)
	add := func(w string) {
		w = strings.ToLower(w)
		if len(w) < 3 || genericColumns[w] {
			return
		}
		seen[w] = true
	}

	for _, t := range s.Tables {
		add(t.Name)
		add(singular(t.Name))
		for _, col := range t.Columns {
			if strings.HasSuffix(col, "_id") || col == "id" {
				continue
			}
			add(col)
		}
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func singular(word string) string {
	switch {
	case strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return strings.TrimSuffix(word, "s")
	default:
		return word
	}
}
