package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/metrics"
	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
)

// PredictionSettings control how predictions are labelled and written
type PredictionSettings struct {
	Threshold         float64
	LabelColumn       string
	ProbabilityColumn string
}

// PredictionService validates uploads and runs them through the fitted model
type PredictionService struct {
	models       ModelProvider
	store        ResultStore
	logger       *zap.Logger
	storeEnabled bool
	storeTTL     time.Duration
	settings     PredictionSettings
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	models ModelProvider,
	store ResultStore,
	logger *zap.Logger,
	storeEnabled bool,
	storeTTL time.Duration,
	settings PredictionSettings,
) *PredictionService {
	return &PredictionService{
		models:       models,
		store:        store,
		logger:       logger,
		storeEnabled: storeEnabled && store != nil,
		storeTTL:     storeTTL,
		settings:     settings,
	}
}

// Schema returns the feature schema uploads are validated against
func (s *PredictionService) Schema(ctx context.Context) (ml.Schema, error) {
	model, err := s.models.Model(ctx)
	if err != nil {
		return ml.Schema{}, err
	}
	return model.Schema, nil
}

// Validate checks an upload's columns against the model's feature columns
func (s *PredictionService) Validate(ctx context.Context, upload *table.Table) (ValidationReport, error) {
	model, err := s.models.Model(ctx)
	if err != nil {
		return ValidationReport{}, err
	}
	return Validate(upload.Header, model.FeatureColumns()), nil
}

// Predict validates an upload and appends the predicted label and probability
// to every row. Missing feature columns abort the request with a
// *MissingColumnsError; extra columns are ignored with a warning.
func (s *PredictionService) Predict(ctx context.Context, upload *table.Table, source string) (*PredictionResult, error) {
	start := time.Now()

	model, err := s.models.Model(ctx)
	if err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		return nil, err
	}

	report := Validate(upload.Header, model.FeatureColumns())
	if !report.OK() {
		metrics.Predictions.WithLabelValues("missing_columns").Inc()
		s.logger.Info("Rejected upload with missing columns",
			zap.String("source", source),
			zap.Strings("missing", report.Missing))
		return nil, &MissingColumnsError{Columns: report.Missing}
	}

	var warnings []string
	if len(report.Extra) > 0 {
		warning := fmt.Sprintf("The following extra columns will be ignored: %s", strings.Join(report.Extra, ", "))
		warnings = append(warnings, warning)
		s.logger.Warn("Ignoring extra upload columns",
			zap.String("source", source),
			zap.Strings("extra", report.Extra))
	}

	features, err := upload.Select(model.FeatureColumns())
	if err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to select feature columns: %w", err)
	}

	proba, transformStats, err := model.Pipeline.PredictProba(features.Rows)
	if err != nil {
		var valueErr *ml.ValueError
		if errors.As(err, &valueErr) {
			metrics.Predictions.WithLabelValues("invalid").Inc()
		} else {
			metrics.Predictions.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	labels := ml.Labels(proba, s.settings.Threshold)

	if transformStats.UnknownCategories > 0 {
		metrics.UnknownCategories.Add(float64(transformStats.UnknownCategories))
		s.logger.Debug("Encoded unseen categories as zeros",
			zap.String("source", source),
			zap.Int("count", transformStats.UnknownCategories))
	}

	output := upload.Clone()
	labelCells := make([]string, len(labels))
	probaCells := make([]string, len(proba))
	for i := range labels {
		labelCells[i] = strconv.Itoa(labels[i])
		probaCells[i] = strconv.FormatFloat(proba[i], 'g', -1, 64)
	}
	if err := output.SetColumn(s.settings.LabelColumn, labelCells); err != nil {
		return nil, err
	}
	if err := output.SetColumn(s.settings.ProbabilityColumn, probaCells); err != nil {
		return nil, err
	}

	result := &PredictionResult{
		ID:            uuid.NewString(),
		Source:        source,
		Table:         output,
		Labels:        labels,
		Probabilities: proba,
		Validation:    report,
		Warnings:      warnings,
		Summary:       summarize(labels, proba, transformStats),
		ModelVersion:  model.Version,
		PredictedAt:   time.Now(),
	}

	if s.storeEnabled {
		if err := s.storeResult(ctx, result); err != nil {
			// the prediction itself succeeded; only the download copy is lost
			s.logger.Error("Failed to store prediction result", zap.Error(err), zap.String("id", result.ID))
		} else {
			result.Stored = true
		}
	}

	metrics.Predictions.WithLabelValues("success").Inc()
	metrics.PredictedRows.Add(float64(len(labels)))
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("Predicted attrition",
		zap.String("id", result.ID),
		zap.String("source", source),
		zap.Int("rows", result.Summary.Rows),
		zap.Int("predicted_positive", result.Summary.PredictedPositive),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// Download returns the rendered CSV of a stored prediction
func (s *PredictionService) Download(ctx context.Context, id string) (*StoredResult, error) {
	if !s.storeEnabled {
		return nil, ErrStoreDisabled
	}
	return s.store.Get(ctx, id)
}

func (s *PredictionService) storeResult(ctx context.Context, result *PredictionResult) error {
	if s.storeTTL <= 0 {
		return fmt.Errorf("non-positive result TTL %v", s.storeTTL)
	}
	payload, err := result.Table.CSVBytes()
	if err != nil {
		return err
	}
	now := time.Now()
	return s.store.Set(ctx, &StoredResult{
		ID:           result.ID,
		Source:       result.Source,
		ModelVersion: result.ModelVersion,
		Rows:         result.Table.Len(),
		Payload:      payload,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.storeTTL),
	})
}

func summarize(labels []int, proba []float64, transformStats ml.TransformStats) PredictionSummary {
	summary := PredictionSummary{
		Rows:              len(labels),
		UnknownCategories: transformStats.UnknownCategories,
	}
	for _, l := range labels {
		summary.PredictedPositive += l
	}
	if len(proba) == 0 {
		return summary
	}

	data := stats.Float64Data(proba)
	summary.MeanProbability, _ = stats.Mean(data)
	summary.MedianProbability, _ = stats.Median(data)
	summary.P90Probability, _ = stats.Percentile(data, 90)
	return summary
}
