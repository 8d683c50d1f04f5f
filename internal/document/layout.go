// Package document builds invoice and summary documents as plain layout
// models and renders them to PDF, XLSX and CSV. Builders and renderers are
// pure functions of their input.
package document

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

// Field is one labelled value.
type Field struct {
	Label string
	Value string
}

type Table struct {
	Columns []string
	Rows    [][]string
}

// Section is a block of the document drawn top to bottom. A section holds
// any mix of free lines, fields and one table.
type Section struct {
	Name   string
	Title  string
	Lines  []string
	Fields []Field
	Table  *Table
}

// Value returns the value of the field labelled label.
func (s *Section) Value(label string) (string, bool) {
	for _, f := range s.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

type Layout struct {
	Title    string
	Sections []Section
	// Timestamp is stamped into rendered metadata so output depends only on
	// the input.
	Timestamp time.Time
}

// Section returns the section named name, or nil.
func (l *Layout) Section(name string) *Section {
	for i := range l.Sections {
		if l.Sections[i].Name == name {
			return &l.Sections[i]
		}
	}
	return nil
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func date(d model.Date) string {
	return d.String()
}
