package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LogisticRegression is a binary classifier with an L2 penalty on the weights.
// C is the inverse regularization strength; the intercept is not penalized.
type LogisticRegression struct {
	C             float64
	MaxIterations int
	Tolerance     float64

	Weights    []float64
	Intercept  float64
	Iterations int
	Converged  bool
}

// NewLogisticRegression initializes an unfitted model
func NewLogisticRegression(c float64, maxIterations int, tolerance float64) *LogisticRegression {
	return &LogisticRegression{
		C:             c,
		MaxIterations: maxIterations,
		Tolerance:     tolerance,
	}
}

// Fit minimizes the mean log-loss plus ||w||^2/(2*C*n) with L-BFGS starting
// from zero, so the same data always yields the same coefficients.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("no training rows")
	}
	if len(X) != len(y) {
		return fmt.Errorf("feature rows (%d) and labels (%d) differ", len(X), len(y))
	}
	if m.C <= 0 {
		return fmt.Errorf("regularization strength C must be positive, got %v", m.C)
	}

	d := len(X[0])
	n := float64(len(X))
	penalty := 1 / (m.C * n)

	// params: d weights followed by the intercept
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:d], params[d]
			loss := 0.0
			for i, row := range X {
				z := floats.Dot(w, row) + b
				loss += softplus(z) - y[i]*z
			}
			return loss/n + 0.5*penalty*floats.Dot(w, w)
		},
		Grad: func(grad, params []float64) {
			w, b := params[:d], params[d]
			for k := range grad {
				grad[k] = 0
			}
			for i, row := range X {
				r := sigmoid(floats.Dot(w, row)+b) - y[i]
				floats.AddScaled(grad[:d], r, row)
				grad[d] += r
			}
			floats.Scale(1/n, grad)
			floats.AddScaled(grad[:d], penalty, w)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: m.Tolerance,
		MajorIterations:   m.MaxIterations,
	}

	result, err := optimize.Minimize(problem, make([]float64, d+1), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("optimizer failed: %w", err)
	}
	if !allFinite(result.X) {
		return fmt.Errorf("optimizer diverged: %v", err)
	}

	m.Weights = append([]float64(nil), result.X[:d]...)
	m.Intercept = result.X[d]
	m.Iterations = result.Stats.MajorIterations
	// a line search that can no longer make progress still leaves a usable optimum
	m.Converged = err == nil && result.Status != optimize.IterationLimit

	return nil
}

// Decision returns w·x + b
func (m *LogisticRegression) Decision(x []float64) float64 {
	return floats.Dot(m.Weights, x) + m.Intercept
}

// Probability returns P(y=1 | x)
func (m *LogisticRegression) Probability(x []float64) float64 {
	return sigmoid(m.Decision(x))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1+exp(z)) without overflow
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
