package core

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
)

type staticModels struct {
	model *FittedModel
	err   error
}

func (s *staticModels) Model(context.Context) (*FittedModel, error) {
	return s.model, s.err
}

type mapStore struct {
	mu      sync.Mutex
	results map[string]*StoredResult
	setErr  error
}

func newMapStore() *mapStore {
	return &mapStore{results: make(map[string]*StoredResult)}
}

func (m *mapStore) Get(_ context.Context, id string) (*StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return r, nil
}

func (m *mapStore) Set(_ context.Context, r *StoredResult) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, id)
	return nil
}

func (m *mapStore) Cleanup(context.Context) error { return nil }

func (m *mapStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func fittedModel(t *testing.T) *FittedModel {
	t.Helper()
	schema := ml.Schema{Columns: []ml.Column{
		{Name: "Age", Kind: ml.KindNumeric},
		{Name: "Department", Kind: ml.KindCategorical},
		{Name: "OverTime", Kind: ml.KindCategorical},
	}}
	rows := [][]string{
		{"22", "Sales", "Yes"},
		{"25", "Sales", "Yes"},
		{"28", "R&D", "Yes"},
		{"30", "Sales", "No"},
		{"35", "R&D", "No"},
		{"40", "HR", "No"},
		{"45", "R&D", "No"},
		{"50", "Sales", "No"},
		{"23", "HR", "Yes"},
		{"33", "R&D", "Yes"},
		{"27", "Sales", "No"},
		{"55", "HR", "No"},
	}
	y := []float64{1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0}

	p := ml.NewPipeline(schema, ml.DefaultOptions())
	require.NoError(t, p.Fit(rows, y))
	return &FittedModel{
		Pipeline:     p,
		Schema:       schema,
		TargetColumn: "Attrition",
		Version:      "test",
		TrainingRows: len(rows),
	}
}

var defaultSettings = PredictionSettings{
	Threshold:         0.5,
	LabelColumn:       "Attrition_Prediction",
	ProbabilityColumn: "Attrition_Probability",
}

func newService(t *testing.T, store ResultStore, enabled bool) *PredictionService {
	return NewPredictionService(&staticModels{model: fittedModel(t)}, store, zap.NewNop(), enabled, time.Hour, defaultSettings)
}

func mustTable(t *testing.T, header []string, rows [][]string) *table.Table {
	t.Helper()
	tbl, err := table.New(header, rows)
	require.NoError(t, err)
	return tbl
}

func TestValidate(t *testing.T) {
	expected := []string{"Age", "Department", "OverTime"}

	report := Validate([]string{"OverTime", "Age", "Name"}, expected)
	assert.Equal(t, []string{"Department"}, report.Missing)
	assert.Equal(t, []string{"Name"}, report.Extra)
	assert.False(t, report.OK())

	report = Validate([]string{"Department", "OverTime", "Age"}, expected)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Extra)
	assert.True(t, report.OK())

	report = Validate(nil, expected)
	assert.Equal(t, expected, report.Missing)
}

func TestPredictAppendsColumns(t *testing.T) {
	store := newMapStore()
	svc := newService(t, store, true)

	upload := mustTable(t,
		[]string{"Age", "Department", "OverTime"},
		[][]string{
			{"22", "Sales", "Yes"},
			{"50", "Sales", "No"},
			{"33", "R&D", "Yes"},
		})

	result, err := svc.Predict(context.Background(), upload, "employees.csv")
	require.NoError(t, err)

	out := result.Table
	assert.Equal(t, []string{"Age", "Department", "OverTime", "Attrition_Prediction", "Attrition_Probability"}, out.Header)
	require.Equal(t, upload.Len(), out.Len())

	for i, row := range out.Rows {
		assert.Equal(t, upload.Rows[i], row[:3], "row %d must be unchanged", i)

		p, err := strconv.ParseFloat(row[4], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		assert.Equal(t, result.Probabilities[i], p)

		want := "0"
		if p >= 0.5 {
			want = "1"
		}
		assert.Equal(t, want, row[3])
	}

	assert.Equal(t, 3, upload.Len())
	assert.Len(t, upload.Header, 3, "upload must not be mutated")
	assert.Greater(t, result.Probabilities[0], result.Probabilities[1])
	assert.Equal(t, 3, result.Summary.Rows)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "test", result.ModelVersion)
	assert.True(t, result.Stored)
	assert.NotEmpty(t, result.ID)

	stored, err := svc.Download(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Rows)
	payload, err := out.CSVBytes()
	require.NoError(t, err)
	assert.Equal(t, payload, stored.Payload)
	assert.WithinDuration(t, stored.CreatedAt.Add(time.Hour), stored.ExpiresAt, time.Second)
}

func TestPredictMissingColumns(t *testing.T) {
	store := newMapStore()
	svc := newService(t, store, true)

	upload := mustTable(t, []string{"Age", "Name"}, [][]string{{"30", "Ann"}})

	_, err := svc.Predict(context.Background(), upload, "partial.csv")
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Department", "OverTime"}, missing.Columns)
	assert.Equal(t, "the following required columns are missing: Department, OverTime", err.Error())
	assert.Zero(t, store.len())
}

func TestPredictIgnoresExtraColumns(t *testing.T) {
	svc := newService(t, nil, false)

	plain := mustTable(t,
		[]string{"Age", "Department", "OverTime"},
		[][]string{{"22", "Sales", "Yes"}, {"45", "R&D", "No"}})
	withExtras := mustTable(t,
		[]string{"Name", "OverTime", "Age", "Department"},
		[][]string{{"Ann", "Yes", "22", "Sales"}, {"Bob", "No", "45", "R&D"}})

	base, err := svc.Predict(context.Background(), plain, "plain.csv")
	require.NoError(t, err)
	extra, err := svc.Predict(context.Background(), withExtras, "extras.csv")
	require.NoError(t, err)

	assert.Equal(t, base.Probabilities, extra.Probabilities)
	assert.Equal(t, base.Labels, extra.Labels)
	assert.Equal(t, []string{"Name"}, extra.Validation.Extra)
	require.Len(t, extra.Warnings, 1)
	assert.Contains(t, extra.Warnings[0], "Name")
	assert.Equal(t, "Ann", extra.Table.Rows[0][0])
	assert.False(t, extra.Stored)
}

func TestPredictUnseenCategory(t *testing.T) {
	svc := newService(t, nil, false)

	upload := mustTable(t,
		[]string{"Age", "Department", "OverTime"},
		[][]string{{"30", "Legal", "No"}})

	result, err := svc.Predict(context.Background(), upload, "new.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.UnknownCategories)
	assert.Len(t, result.Labels, 1)
}

func TestPredictOverwritesOutputColumns(t *testing.T) {
	svc := newService(t, nil, false)

	upload := mustTable(t,
		[]string{"Age", "Department", "OverTime", "Attrition_Prediction"},
		[][]string{{"22", "Sales", "Yes", "stale"}})

	result, err := svc.Predict(context.Background(), upload, "rerun.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Department", "OverTime", "Attrition_Prediction", "Attrition_Probability"}, result.Table.Header)
	assert.NotEqual(t, "stale", result.Table.Rows[0][3])
}

func TestPredictInvalidNumericValue(t *testing.T) {
	svc := newService(t, nil, false)

	upload := mustTable(t,
		[]string{"Age", "Department", "OverTime"},
		[][]string{{"22", "Sales", "Yes"}, {"old", "Sales", "No"}})

	_, err := svc.Predict(context.Background(), upload, "bad.csv")
	var valueErr *ml.ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, "Age", valueErr.Column)
}

func TestPredictEmptyUpload(t *testing.T) {
	svc := newService(t, nil, false)

	upload := mustTable(t, []string{"Age", "Department", "OverTime"}, nil)
	result, err := svc.Predict(context.Background(), upload, "empty.csv")
	require.NoError(t, err)
	assert.Zero(t, result.Table.Len())
	assert.Zero(t, result.Summary.Rows)
	assert.Len(t, result.Table.Header, 5)
}

func TestPredictModelUnavailable(t *testing.T) {
	boom := errors.New("training failed")
	svc := NewPredictionService(&staticModels{err: boom}, nil, zap.NewNop(), false, time.Hour, defaultSettings)

	_, err := svc.Predict(context.Background(), mustTable(t, []string{"Age"}, nil), "x.csv")
	assert.ErrorIs(t, err, boom)

	_, err = svc.Schema(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestPredictStoreFailureIsNotFatal(t *testing.T) {
	store := newMapStore()
	store.setErr = errors.New("disk full")
	svc := newService(t, store, true)

	upload := mustTable(t, []string{"Age", "Department", "OverTime"}, [][]string{{"22", "Sales", "Yes"}})
	result, err := svc.Predict(context.Background(), upload, "a.csv")
	require.NoError(t, err)
	assert.False(t, result.Stored)
}

func TestPredictNonPositiveTTLIsNotStored(t *testing.T) {
	store := newMapStore()
	svc := NewPredictionService(&staticModels{model: fittedModel(t)}, store, zap.NewNop(), true, 0, defaultSettings)

	upload := mustTable(t, []string{"Age", "Department", "OverTime"}, [][]string{{"22", "Sales", "Yes"}})
	result, err := svc.Predict(context.Background(), upload, "a.csv")
	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.Equal(t, 0, store.len())
}

func TestDownload(t *testing.T) {
	disabled := newService(t, newMapStore(), false)
	_, err := disabled.Download(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrStoreDisabled)

	enabled := newService(t, newMapStore(), true)
	_, err = enabled.Download(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestSchemaAndServiceValidate(t *testing.T) {
	svc := newService(t, nil, false)

	schema, err := svc.Schema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Department", "OverTime"}, schema.Names())

	report, err := svc.Validate(context.Background(), mustTable(t, []string{"Age", "Extra"}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Department", "OverTime"}, report.Missing)
	assert.Equal(t, []string{"Extra"}, report.Extra)
}
