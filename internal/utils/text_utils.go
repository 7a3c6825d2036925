package utils

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextProcessor provides utilities for processing uploaded text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// DecodeBytes returns the content as UTF-8 with any byte order mark removed.
// Input that is not valid UTF-8 is decoded as Windows-1252, which is what
// spreadsheet exports on Windows usually produce.
func (tp *TextProcessor) DecodeBytes(data []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode text: %w", err)
	}

	if utf8.Valid(data) {
		return decoded, nil
	}

	converted, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Windows-1252 text: %w", err)
	}

	tp.logger.Debug("Decoded non UTF-8 input as Windows-1252",
		zap.Int("original_size", len(data)),
		zap.Int("decoded_size", len(converted)))

	return converted, nil
}

// DecodeReader reads r fully and returns a reader over the decoded content
func (tp *TextProcessor) DecodeReader(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	decoded, err := tp.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(decoded), nil
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + "..."
}
