package ml

import (
	"errors"
	"fmt"
)

// Options are the classifier hyperparameters
type Options struct {
	C             float64
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions mirror the usual logistic regression defaults
func DefaultOptions() Options {
	return Options{C: 1.0, MaxIterations: 1000, Tolerance: 1e-4}
}

// ValueError reports a feature cell that cannot be used for prediction
type ValueError struct {
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("column %q row %d: %s (%q)", e.Column, e.Row, e.Reason, e.Value)
}

// TransformStats describes what happened while encoding rows
type TransformStats struct {
	UnknownCategories int
}

// Pipeline is a column transformer (numeric passthrough, categorical one-hot)
// followed by a logistic regression. It is immutable once fitted.
type Pipeline struct {
	schema      Schema
	numeric     []int
	categorical []int
	encoder     *OneHotEncoder
	model       *LogisticRegression
	fitted      bool
}

// NewPipeline creates an unfitted pipeline for a schema
func NewPipeline(schema Schema, opts Options) *Pipeline {
	p := &Pipeline{
		schema: schema,
		model:  NewLogisticRegression(opts.C, opts.MaxIterations, opts.Tolerance),
	}
	for i, c := range schema.Columns {
		if c.Kind == KindNumeric {
			p.numeric = append(p.numeric, i)
		} else {
			p.categorical = append(p.categorical, i)
		}
	}
	p.encoder = NewOneHotEncoder(schema.Categorical())
	return p
}

// Schema returns the feature schema the pipeline expects
func (p *Pipeline) Schema() Schema {
	return p.schema
}

// Fit learns the encoder and classifier. rows hold one cell per schema column,
// in schema order; y holds 0/1 labels.
func (p *Pipeline) Fit(rows [][]string, y []float64) error {
	if p.fitted {
		return errors.New("pipeline already fitted")
	}
	if len(rows) != len(y) {
		return fmt.Errorf("rows (%d) and labels (%d) differ", len(rows), len(y))
	}
	if err := checkBothClasses(y); err != nil {
		return err
	}

	catRows := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(p.schema.Columns) {
			return fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(p.schema.Columns))
		}
		catRows[i] = p.pick(row, p.categorical)
	}
	if err := p.encoder.Fit(catRows); err != nil {
		return err
	}

	X, _, err := p.transform(rows)
	if err != nil {
		return err
	}
	if err := p.model.Fit(X, y); err != nil {
		return fmt.Errorf("failed to fit classifier: %w", err)
	}

	p.fitted = true
	return nil
}

// Transform encodes rows into the classifier's feature space
func (p *Pipeline) Transform(rows [][]string) ([][]float64, TransformStats, error) {
	if !p.fitted {
		return nil, TransformStats{}, errors.New("pipeline not fitted")
	}
	return p.transform(rows)
}

func (p *Pipeline) transform(rows [][]string) ([][]float64, TransformStats, error) {
	var stats TransformStats
	width := len(p.numeric) + p.encoder.Width()

	X := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(p.schema.Columns) {
			return nil, stats, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(p.schema.Columns))
		}

		x := make([]float64, width)
		for k, j := range p.numeric {
			v, err := parseNumber(row[j])
			if err != nil {
				return nil, stats, &ValueError{
					Column: p.schema.Columns[j].Name,
					Row:    i + 1,
					Value:  row[j],
					Reason: err.Error(),
				}
			}
			x[k] = v
		}
		stats.UnknownCategories += p.encoder.Encode(p.pick(row, p.categorical), x[len(p.numeric):])
		X[i] = x
	}
	return X, stats, nil
}

// PredictProba returns P(y=1) for every row, in row order
func (p *Pipeline) PredictProba(rows [][]string) ([]float64, TransformStats, error) {
	X, stats, err := p.Transform(rows)
	if err != nil {
		return nil, stats, err
	}
	proba := make([]float64, len(X))
	for i, x := range X {
		proba[i] = p.model.Probability(x)
	}
	return proba, stats, nil
}

// Predict returns 0/1 labels using threshold on the positive-class probability
func (p *Pipeline) Predict(rows [][]string, threshold float64) ([]int, error) {
	proba, _, err := p.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	return Labels(proba, threshold), nil
}

// FeatureNames names every encoded feature: numeric columns, then one-hot blocks
func (p *Pipeline) FeatureNames() []string {
	names := make([]string, 0, len(p.numeric)+p.encoder.Width())
	names = append(names, p.schema.Numeric()...)
	return append(names, p.encoder.FeatureNames()...)
}

// Coefficients returns the learned weight of every encoded feature
func (p *Pipeline) Coefficients() map[string]float64 {
	coef := make(map[string]float64, len(p.model.Weights))
	for i, name := range p.FeatureNames() {
		coef[name] = p.model.Weights[i]
	}
	return coef
}

// Classifier exposes the fitted logistic regression
func (p *Pipeline) Classifier() *LogisticRegression {
	return p.model
}

func (p *Pipeline) pick(row []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = row[j]
	}
	return out
}

// Labels converts probabilities to 0/1 labels: 1 iff p >= threshold
func Labels(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= threshold {
			out[i] = 1
		}
	}
	return out
}
