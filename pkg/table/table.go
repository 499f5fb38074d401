// Package table decodes CSV payloads from the tabular data service into typed tables.
package table

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Kind is the decoded type of a column.
type Kind string

const (
	// KindString keeps cells as strings.
	KindString Kind = "string"

	// KindInt holds int64 cells.
	KindInt Kind = "int"

	// KindFloat holds float64 cells.
	KindFloat Kind = "float"
)

// Column describes one table column.
type Column struct {
	Name string
	Kind Kind
}

// Table is a decoded result set. Empty cells are nil.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named column, or nil if it does not exist.
func (t *Table) Column(name string) []any {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Decode parses csvText into a Table.
//
// Columns named in stringColumns are kept as strings so identifiers such as
// "000001" keep their leading zeros. Every other column is inferred: int64
// when all non-empty cells are integers, float64 when all are numeric,
// string otherwise. Empty input yields a table with defaultHeader and no rows.
// Parse errors from encoding/csv are returned unchanged.
func Decode(csvText string, defaultHeader []string, stringColumns []string) (*Table, error) {
	if strings.TrimSpace(csvText) == "" {
		cols := make([]Column, len(defaultHeader))
		for i, name := range defaultHeader {
			cols[i] = Column{Name: name, Kind: KindString}
		}
		return &Table{Columns: cols, Rows: [][]any{}}, nil
	}

	r := csv.NewReader(strings.NewReader(csvText))
	header, err := r.Read()
	if err != nil {
		return nil, err
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	forced := make(map[string]bool, len(stringColumns))
	for _, name := range stringColumns {
		forced[name] = true
	}

	t := &Table{
		Columns: make([]Column, len(header)),
		Rows:    make([][]any, len(records)),
	}
	for i, name := range header {
		kind := KindString
		if !forced[name] {
			kind = inferKind(records, i)
		}
		t.Columns[i] = Column{Name: name, Kind: kind}
	}

	for r, rec := range records {
		row := make([]any, len(header))
		for c, cell := range rec {
			row[c] = convert(cell, t.Columns[c].Kind)
		}
		t.Rows[r] = row
	}

	return t, nil
}

// inferKind picks the narrowest kind that fits every non-empty cell of column col.
func inferKind(records [][]string, col int) Kind {
	kind := KindInt
	seen := false
	for _, rec := range records {
		cell := rec[col]
		if cell == "" {
			continue
		}
		seen = true
		if kind == KindInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			kind = KindFloat
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return KindString
		}
	}
	if !seen {
		return KindString
	}
	return kind
}

func convert(cell string, kind Kind) any {
	if cell == "" {
		return nil
	}
	switch kind {
	case KindInt:
		n, _ := strconv.ParseInt(cell, 10, 64)
		return n
	case KindFloat:
		f, _ := strconv.ParseFloat(cell, 64)
		return f
	default:
		return cell
	}
}
