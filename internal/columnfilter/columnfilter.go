package columnfilter

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides which dataset columns are kept out of the feature set,
// such as employee identifiers that carry no signal
type Checker struct {
	columns map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new exclusion checker. Names match case-insensitively.
func NewChecker(columns []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(columns))
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		normalized[name] = struct{}{}
		names = append(names, name)
	}

	if len(names) > 0 && logger != nil {
		logger.Info("Initialized column exclusion list", zap.Strings("columns", names))
	}

	return &Checker{
		columns: normalized,
		logger:  logger,
	}
}

// IsExcluded reports whether a column must not be used as a feature
func (c *Checker) IsExcluded(column string) bool {
	if len(c.columns) == 0 {
		return false
	}

	_, ok := c.columns[strings.ToLower(strings.TrimSpace(column))]
	if ok && c.logger != nil {
		c.logger.Debug("Column excluded from features", zap.String("column", column))
	}
	return ok
}
