package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/table"
)

// CliFrontend runs predictions for a single file from the command line.
// The result CSV goes to stdout or a file; the human summary goes to the
// summary writer so the two never interleave.
type CliFrontend struct {
	service     *core.PredictionService
	reader      *table.Reader
	logger      *zap.Logger
	verbose     bool
	previewRows int
	summary     io.Writer
	stdout      io.Writer
}

// NewCliFrontend creates a new CLI frontend
func NewCliFrontend(
	service *core.PredictionService,
	reader *table.Reader,
	logger *zap.Logger,
	verbose bool,
	previewRows int,
	summary io.Writer,
	stdout io.Writer,
) *CliFrontend {
	return &CliFrontend{
		service:     service,
		reader:      reader,
		logger:      logger,
		verbose:     verbose,
		previewRows: previewRows,
		summary:     summary,
		stdout:      stdout,
	}
}

// ProcessFile predicts every row of inputPath and writes the result CSV to
// outputPath, or to stdout when outputPath is empty or "-"
func (f *CliFrontend) ProcessFile(ctx context.Context, inputPath, outputPath string) (*core.PredictionResult, error) {
	f.logger.Debug("Processing file", zap.String("file", inputPath))

	if !table.SupportedExtension(inputPath) {
		return nil, fmt.Errorf("unsupported file type %q: only .csv and .xlsx files are supported", inputPath)
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	upload, err := f.reader.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f.summary, "\n=== Upload Summary ===\n")
	fmt.Fprintf(f.summary, "File: %s\n", inputPath)
	fmt.Fprintf(f.summary, "Size: %s\n", humanize.Bytes(uint64(info.Size())))
	fmt.Fprintf(f.summary, "Rows: %d\n", upload.Len())
	fmt.Fprintf(f.summary, "Columns: %d\n", len(upload.Header))

	startTime := time.Now()
	result, err := f.service.Predict(ctx, upload, inputPath)
	if err != nil {
		var missing *core.MissingColumnsError
		if errors.As(err, &missing) {
			fmt.Fprintf(f.summary, "\nError: %v\n", err)
		}
		return nil, err
	}
	duration := time.Since(startTime)

	if err := f.writeOutput(result.Table, outputPath); err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(f.summary, "Warning: %s\n", w)
	}

	s := result.Summary
	fmt.Fprintf(f.summary, "\n=== Results ===\n")
	fmt.Fprintf(f.summary, "Model version: %s\n", result.ModelVersion)
	fmt.Fprintf(f.summary, "Predicted to leave: %d of %d\n", s.PredictedPositive, s.Rows)
	fmt.Fprintf(f.summary, "Mean probability: %.4f\n", s.MeanProbability)
	fmt.Fprintf(f.summary, "Median probability: %.4f\n", s.MedianProbability)
	fmt.Fprintf(f.summary, "90th percentile: %.4f\n", s.P90Probability)
	if s.UnknownCategories > 0 {
		fmt.Fprintf(f.summary, "Unseen categories: %d\n", s.UnknownCategories)
	}
	fmt.Fprintf(f.summary, "Processing time: %v\n", duration)

	if f.verbose {
		preview := result.Table.Head(f.previewRows)
		fmt.Fprintf(f.summary, "\nPreview:\n%s\n", strings.Join(preview.Header, ","))
		for _, row := range preview.Rows {
			fmt.Fprintln(f.summary, strings.Join(row, ","))
		}
	}

	return result, nil
}

// PrintSchema lists the feature columns every input file must carry
func (f *CliFrontend) PrintSchema(ctx context.Context) error {
	schema, err := f.service.Schema(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(f.stdout, "Required columns (%d):\n", len(schema.Columns))
	for _, c := range schema.Columns {
		fmt.Fprintf(f.stdout, "  %-30s %s\n", c.Name, c.Kind)
	}
	return nil
}

func (f *CliFrontend) writeOutput(t *table.Table, outputPath string) error {
	if outputPath == "" || outputPath == "-" {
		return t.WriteCSV(f.stdout)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := t.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(f.summary, "Wrote predictions to %s\n", outputPath)
	return nil
}

// Start is a no-op for the CLI frontend
func (f *CliFrontend) Start() error {
	return nil
}

// Stop is a no-op for the CLI frontend
func (f *CliFrontend) Stop() error {
	return nil
}
