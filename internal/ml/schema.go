package ml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mikey/attrition-predictor/internal/table"
)

// ColumnKind is how a feature column is fed to the classifier
type ColumnKind string

const (
	// KindNumeric columns pass through unchanged
	KindNumeric ColumnKind = "numeric"
	// KindCategorical columns are one-hot encoded
	KindCategorical ColumnKind = "categorical"
)

// Column describes one feature column
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Schema is the ordered list of feature columns fixed at training time.
// It is the contract every prediction request is validated against.
type Schema struct {
	Columns []Column `json:"columns"`
}

// Names returns the feature column names in schema order
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Numeric returns the names of numeric columns in schema order
func (s Schema) Numeric() []string {
	return s.byKind(KindNumeric)
}

// Categorical returns the names of categorical columns in schema order
func (s Schema) Categorical() []string {
	return s.byKind(KindCategorical)
}

func (s Schema) byKind(kind ColumnKind) []string {
	var names []string
	for _, c := range s.Columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

// InferSchema classifies every column of t as numeric or categorical.
// A column is numeric when all of its non-empty cells parse as numbers and at
// least one cell holds a finite number; everything else is categorical.
func InferSchema(t *table.Table) Schema {
	columns := make([]Column, len(t.Header))
	for j, name := range t.Header {
		kind := KindCategorical
		if numericColumn(t.Rows, j) {
			kind = KindNumeric
		}
		columns[j] = Column{Name: name, Kind: kind}
	}
	return Schema{Columns: columns}
}

func numericColumn(rows [][]string, j int) bool {
	finite := false
	for _, row := range rows {
		cell := strings.TrimSpace(row[j])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return false
		}
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = true
		}
	}
	return finite
}

// parseNumber converts a numeric cell, rejecting missing and non-finite values
func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return v, nil
}
