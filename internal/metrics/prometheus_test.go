package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, status string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, Predictions.WithLabelValues(status).Write(&m))
	return m.GetCounter().GetValue()
}

func TestPredictionsCounter(t *testing.T) {
	before := counterValue(t, "success")
	Predictions.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, counterValue(t, "success"))
}

func TestHandler(t *testing.T) {
	Predictions.WithLabelValues("invalid").Inc()
	TrainingRows.Set(42)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `attrition_predictions_total{status="invalid"}`)
	assert.Contains(t, body, "attrition_training_rows 42")
	assert.Contains(t, body, "attrition_prediction_duration_seconds_bucket")
}
