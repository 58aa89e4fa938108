package postgres

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/omniscale/osmtables/element"
)

var pgTypes = map[element.ColumnType]string{
	element.IDColumn:     "BIGINT",
	element.IntColumn:    "BIGINT",
	element.FloatColumn:  "DOUBLE PRECISION",
	element.StringColumn: "TEXT",
}

type TableSpec struct {
	Name     string
	FullName string
	Schema   string
	Columns  []element.Column
}

func NewTableSpec(schema, prefix string, t element.Table) *TableSpec {
	return &TableSpec{
		Name:     t.Name,
		FullName: prefix + t.Name,
		Schema:   schema,
		Columns:  t.Columns,
	}
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(col.Name), pgTypes[col.Type])
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (%s)`,
		pq.QuoteIdentifier(spec.Schema),
		pq.QuoteIdentifier(spec.FullName),
		strings.Join(cols, ", "),
	)
}

func (spec *TableSpec) TruncateSQL() string {
	return fmt.Sprintf(`TRUNCATE TABLE %s.%s`,
		pq.QuoteIdentifier(spec.Schema),
		pq.QuoteIdentifier(spec.FullName),
	)
}

func (spec *TableSpec) CopySQL() string {
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = col.Name
	}
	return pq.CopyInSchema(spec.Schema, spec.FullName, cols...)
}

// IndexSQL returns the statements for the indices on all id columns.
func (spec *TableSpec) IndexSQL() []string {
	var stmts []string
	for _, col := range spec.Columns {
		if col.Type != element.IDColumn {
			continue
		}
		stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s.%s USING BTREE (%s)`,
			pq.QuoteIdentifier(spec.FullName+"_"+col.Name+"_idx"),
			pq.QuoteIdentifier(spec.Schema),
			pq.QuoteIdentifier(spec.FullName),
			pq.QuoteIdentifier(col.Name),
		))
	}
	return stmts
}

// values converts row for COPY. Empty strings in non-text columns are
// inserted as NULL.
func (spec *TableSpec) values(row []interface{}) []interface{} {
	result := make([]interface{}, len(row))
	for i, v := range row {
		if s, ok := v.(string); ok && s == "" && i < len(spec.Columns) && spec.Columns[i].Type != element.StringColumn {
			continue
		}
		result[i] = v
	}
	return result
}
