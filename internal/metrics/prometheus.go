package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector of this service
	Registry = prometheus.NewRegistry()

	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attrition_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"status"}, // status: success|missing_columns|invalid|error
	)

	PredictedRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attrition_predicted_rows_total",
			Help: "Total number of rows that received a prediction",
		},
	)

	UnknownCategories = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attrition_unknown_categories_total",
			Help: "Categorical values not seen during training, encoded as zeros",
		},
	)

	PredictionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attrition_prediction_duration_seconds",
			Help:    "Prediction request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	// Training metrics
	TrainingDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "attrition_training_duration_seconds",
			Help: "Duration of the one-time model training",
		},
	)

	TrainingRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "attrition_training_rows",
			Help: "Number of rows the model was trained on",
		},
	)

	TrainingAccuracy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "attrition_training_accuracy",
			Help: "Accuracy of the fitted model on its training data",
		},
	)
)

func init() {
	Registry.MustRegister(
		Predictions,
		PredictedRows,
		UnknownCategories,
		PredictionDuration,
		TrainingDuration,
		TrainingRows,
		TrainingAccuracy,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
