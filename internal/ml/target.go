package ml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSingleClass is returned when the training target holds only one class
var ErrSingleClass = errors.New("training target must contain both classes")

// TargetError reports a target value that cannot be mapped to 0 or 1
type TargetError struct {
	Row   int
	Value string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target value %q on row %d is not binary", e.Value, e.Row)
}

// NormalizeTarget maps a target column to {0,1}. Numeric columns must already
// hold 0/1; textual columns must hold exactly "Yes"/"No".
func NormalizeTarget(values []string) ([]float64, error) {
	numeric := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			numeric = false
			break
		}
	}

	y := make([]float64, len(values))
	for i, v := range values {
		if numeric {
			f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if f != 0 && f != 1 {
				return nil, &TargetError{Row: i + 1, Value: v}
			}
			y[i] = f
			continue
		}

		switch v {
		case "Yes":
			y[i] = 1
		case "No":
			y[i] = 0
		default:
			return nil, &TargetError{Row: i + 1, Value: v}
		}
	}

	return y, nil
}

func checkBothClasses(y []float64) error {
	var pos, neg bool
	for _, v := range y {
		if v == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	if !pos || !neg {
		return ErrSingleClass
	}
	return nil
}
