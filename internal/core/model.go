package core

import (
	"time"

	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
)

// FittedModel is the trained pipeline together with the feature schema it was
// trained on. It is created once per process and never mutated afterwards.
type FittedModel struct {
	Pipeline      *ml.Pipeline
	Schema        ml.Schema
	TargetColumn  string
	Version       string
	TrainedAt     time.Time
	TrainingRows  int
	TrainingStats ml.Metrics
	Converged     bool
}

// FeatureColumns returns the ordered feature columns every upload must carry
func (m *FittedModel) FeatureColumns() []string {
	return m.Schema.Names()
}

// ValidationReport classifies upload columns against the feature schema
type ValidationReport struct {
	Missing []string `json:"missing_columns"`
	Extra   []string `json:"extra_columns"`
}

// OK reports whether prediction may proceed
func (r ValidationReport) OK() bool {
	return len(r.Missing) == 0
}

// PredictionSummary aggregates the predictions of one upload
type PredictionSummary struct {
	Rows              int     `json:"rows"`
	PredictedPositive int     `json:"predicted_positive"`
	MeanProbability   float64 `json:"mean_probability"`
	MedianProbability float64 `json:"median_probability"`
	P90Probability    float64 `json:"p90_probability"`
	UnknownCategories int     `json:"unknown_categories"`
}

// PredictionResult is the uploaded table with the predicted label and
// probability columns appended, row for row
type PredictionResult struct {
	ID            string
	Source        string
	Table         *table.Table
	Labels        []int
	Probabilities []float64
	Validation    ValidationReport
	Warnings      []string
	Summary       PredictionSummary
	ModelVersion  string
	PredictedAt   time.Time
	Stored        bool
}

// StoredResult is a rendered prediction kept for later download
type StoredResult struct {
	ID           string
	Source       string
	ModelVersion string
	Rows         int
	Payload      []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}
