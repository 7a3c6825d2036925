package training

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/columnfilter"
	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/metrics"
	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
)

// ErrTargetMissing is returned when the training dataset has no target column
var ErrTargetMissing = errors.New("target column missing from training dataset")

// Trainer fits the attrition pipeline on the fixed training dataset
type Trainer struct {
	cfg      config.TrainingConfig
	reader   *table.Reader
	excluded *columnfilter.Checker
	logger   *zap.Logger
}

// NewTrainer creates a new trainer
func NewTrainer(cfg config.TrainingConfig, reader *table.Reader, logger *zap.Logger) *Trainer {
	return &Trainer{
		cfg:      cfg,
		reader:   reader,
		excluded: columnfilter.NewChecker(cfg.ExcludeColumns, logger),
		logger:   logger,
	}
}

// Train loads the dataset, derives the feature schema and fits the pipeline
func (t *Trainer) Train(ctx context.Context) (*core.FittedModel, error) {
	start := time.Now()

	raw, err := os.ReadFile(t.cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read training dataset: %w", err)
	}
	t.logger.Info("Loading training dataset",
		zap.String("path", t.cfg.DatasetPath),
		zap.String("size", humanize.Bytes(uint64(len(raw)))))

	data, err := t.reader.ReadBytes(t.cfg.DatasetPath, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse training dataset: %w", err)
	}

	if !data.Has(t.cfg.TargetColumn) {
		return nil, fmt.Errorf("%w: %q", ErrTargetMissing, t.cfg.TargetColumn)
	}
	targetValues, _ := data.Column(t.cfg.TargetColumn)
	y, err := ml.NormalizeTarget(targetValues)
	if err != nil {
		return nil, fmt.Errorf("invalid target column %q: %w", t.cfg.TargetColumn, err)
	}

	drop := []string{t.cfg.TargetColumn}
	for _, name := range data.Header {
		if t.excluded.IsExcluded(name) {
			drop = append(drop, name)
		}
	}
	features := data.Drop(drop...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema := ml.InferSchema(features)
	t.logger.Info("Inferred feature schema",
		zap.Strings("numeric", schema.Numeric()),
		zap.Strings("categorical", schema.Categorical()))

	pipeline := ml.NewPipeline(schema, ml.Options{
		C:             t.cfg.RegularizationC,
		MaxIterations: t.cfg.MaxIterations,
		Tolerance:     t.cfg.Tolerance,
	})
	if err := pipeline.Fit(features.Rows, y); err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}

	labels, err := pipeline.Predict(features.Rows, 0.5)
	if err != nil {
		return nil, fmt.Errorf("failed to score training data: %w", err)
	}
	trainingStats := ml.Evaluate(y, labels)

	classifier := pipeline.Classifier()
	if !classifier.Converged {
		t.logger.Warn("Classifier did not converge, consider raising training.max_iterations",
			zap.Int("iterations", classifier.Iterations))
	}

	sum := sha256.Sum256(raw)
	model := &core.FittedModel{
		Pipeline:      pipeline,
		Schema:        schema,
		TargetColumn:  t.cfg.TargetColumn,
		Version:       hex.EncodeToString(sum[:])[:12],
		TrainedAt:     time.Now(),
		TrainingRows:  features.Len(),
		TrainingStats: trainingStats,
		Converged:     classifier.Converged,
	}

	elapsed := time.Since(start)
	metrics.TrainingDuration.Set(elapsed.Seconds())
	metrics.TrainingRows.Set(float64(model.TrainingRows))
	metrics.TrainingAccuracy.Set(trainingStats.Accuracy)

	t.logger.Info("Trained attrition model",
		zap.String("version", model.Version),
		zap.Int("rows", model.TrainingRows),
		zap.Int("features", len(schema.Columns)),
		zap.Int("encoded_features", len(pipeline.FeatureNames())),
		zap.Int("iterations", classifier.Iterations),
		zap.Float64("training_accuracy", trainingStats.Accuracy),
		zap.Duration("duration", elapsed))

	return model, nil
}
