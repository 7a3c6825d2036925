package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/utils"
)

// Reader loads tables from CSV and Excel sources
type Reader struct {
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewReader creates a new table reader
func NewReader(textProcessor *utils.TextProcessor, logger *zap.Logger) *Reader {
	return &Reader{
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// SupportedExtension reports whether a file name has a readable extension
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// ReadFile opens and reads a table from disk
func (r *Reader) ReadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return r.Read(filepath.Base(path), file)
}

// ReadBytes reads a table held in memory
func (r *Reader) ReadBytes(name string, data []byte) (*Table, error) {
	return r.Read(name, bytes.NewReader(data))
}

// Read reads a table, choosing the format from the file name extension.
// Anything that is not .xlsx is parsed as CSV.
func (r *Reader) Read(name string, src io.Reader) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return r.readExcel(src)
	}
	return r.readCSV(src)
}

func (r *Reader) readCSV(src io.Reader) (*Table, error) {
	decoded, err := r.textProcessor.DecodeReader(src)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &FormatError{Reason: parseErr.Error()}
		}
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, &FormatError{Reason: "no header row"}
	}

	r.logger.Debug("Read CSV table",
		zap.Int("columns", len(records[0])),
		zap.Int("rows", len(records)-1))

	return New(records[0], records[1:])
}

func (r *Reader) readExcel(src io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("cannot open workbook: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, &FormatError{Reason: "no header row"}
	}

	// excelize trims trailing empty cells, pad rows back to the header width
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, &FormatError{Reason: fmt.Sprintf("row %d has %d fields, expected %d", len(body)+1, len(row), len(header))}
		}
		padded := make([]string, len(header))
		copy(padded, row)
		body = append(body, padded)
	}

	r.logger.Debug("Read Excel table",
		zap.String("sheet", sheets[0]),
		zap.Int("columns", len(header)),
		zap.Int("rows", len(body)))

	return New(header, body)
}
