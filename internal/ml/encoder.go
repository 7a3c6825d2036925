package ml

import (
	"errors"
	"sort"
)

// OneHotEncoder encodes categorical columns as indicator blocks.
// Categories unseen during Fit encode to an all-zero block.
type OneHotEncoder struct {
	columns    []string
	categories [][]string
	index      []map[string]int
	offsets    []int
	width      int
}

// NewOneHotEncoder creates an encoder for the given columns
func NewOneHotEncoder(columns []string) *OneHotEncoder {
	return &OneHotEncoder{columns: columns}
}

// Fit learns the sorted category set of every column. rows hold one value per
// encoder column, in encoder column order.
func (e *OneHotEncoder) Fit(rows [][]string) error {
	if e.index != nil {
		return errors.New("encoder already fitted")
	}

	e.categories = make([][]string, len(e.columns))
	e.index = make([]map[string]int, len(e.columns))
	e.offsets = make([]int, len(e.columns))

	width := 0
	for j := range e.columns {
		seen := make(map[string]struct{})
		for _, row := range rows {
			seen[row[j]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for c := range seen {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		idx := make(map[string]int, len(cats))
		for k, c := range cats {
			idx[c] = k
		}

		e.categories[j] = cats
		e.index[j] = idx
		e.offsets[j] = width
		width += len(cats)
	}
	e.width = width

	return nil
}

// Width is the number of output features
func (e *OneHotEncoder) Width() int {
	return e.width
}

// Categories returns the learned categories of column j
func (e *OneHotEncoder) Categories(j int) []string {
	return e.categories[j]
}

// Encode writes the indicator blocks for values into dst, which must have
// Width() zeroed entries. It returns how many values were not seen during Fit.
func (e *OneHotEncoder) Encode(values []string, dst []float64) int {
	unknown := 0
	for j, v := range values {
		k, ok := e.index[j][v]
		if !ok {
			unknown++
			continue
		}
		dst[e.offsets[j]+k] = 1
	}
	return unknown
}

// FeatureNames returns "column_category" names for every output feature
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.width)
	for j, col := range e.columns {
		for _, c := range e.categories[j] {
			names = append(names, col+"_"+c)
		}
	}
	return names
}
