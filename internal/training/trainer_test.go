package training

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/ml"
	"github.com/mikey/attrition-predictor/internal/table"
	"github.com/mikey/attrition-predictor/internal/utils"
)

const hrData = `EmployeeNumber,Age,Department,OverTime,Attrition
1,22,Sales,Yes,Yes
2,25,Sales,Yes,Yes
3,28,R&D,Yes,Yes
4,30,Sales,No,No
5,35,R&D,No,No
6,40,HR,No,No
7,45,R&D,No,No
8,50,Sales,No,No
9,23,HR,Yes,Yes
10,33,R&D,Yes,No
11,27,Sales,No,Yes
12,55,HR,No,No
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hr_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTrainer(path string, exclude ...string) *Trainer {
	logger := zap.NewNop()
	cfg := config.TrainingConfig{
		DatasetPath:     path,
		TargetColumn:    "Attrition",
		ExcludeColumns:  exclude,
		RegularizationC: 1.0,
		MaxIterations:   1000,
		Tolerance:       1e-4,
	}
	return NewTrainer(cfg, table.NewReader(utils.NewTextProcessor(logger), logger), logger)
}

func TestTrain(t *testing.T) {
	model, err := newTrainer(writeDataset(t, hrData)).Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"EmployeeNumber", "Age", "Department", "OverTime"}, model.FeatureColumns())
	assert.Equal(t, []string{"EmployeeNumber", "Age"}, model.Schema.Numeric())
	assert.Equal(t, []string{"Department", "OverTime"}, model.Schema.Categorical())
	assert.Equal(t, "Attrition", model.TargetColumn)
	assert.Equal(t, 12, model.TrainingRows)
	assert.Len(t, model.Version, 12)
	assert.InDelta(t, 5.0/12.0, model.TrainingStats.PositiveRate, 1e-9)
	assert.NotNil(t, model.Pipeline)
}

func TestTrainSchemaIsStable(t *testing.T) {
	path := writeDataset(t, hrData)

	first, err := newTrainer(path).Train(context.Background())
	require.NoError(t, err)
	second, err := newTrainer(path).Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.FeatureColumns(), second.FeatureColumns())
	assert.Equal(t, first.Schema, second.Schema)
	assert.Equal(t, first.Version, second.Version)
}

func TestTrainExcludesColumns(t *testing.T) {
	model, err := newTrainer(writeDataset(t, hrData), "employeenumber").Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Department", "OverTime"}, model.FeatureColumns())
}

func TestTrainNumericTarget(t *testing.T) {
	data := "Age,Attrition\n22,1\n25,1\n40,0\n50,0\n30,1\n45,0\n"
	model, err := newTrainer(writeDataset(t, data)).Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Age"}, model.FeatureColumns())
}

func TestTrainFatalErrors(t *testing.T) {
	_, err := newTrainer(filepath.Join(t.TempDir(), "absent.csv")).Train(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = newTrainer(writeDataset(t, "Age,Dept\n22,Sales\n")).Train(context.Background())
	assert.ErrorIs(t, err, ErrTargetMissing)

	_, err = newTrainer(writeDataset(t, "Age,Attrition\n22,Maybe\n")).Train(context.Background())
	var targetErr *ml.TargetError
	assert.ErrorAs(t, err, &targetErr)

	_, err = newTrainer(writeDataset(t, "Age,Attrition\n22,No\n30,No\n")).Train(context.Background())
	assert.ErrorIs(t, err, ml.ErrSingleClass)

	_, err = newTrainer(writeDataset(t, "Age,Attrition\n22,Yes\n,No\n")).Train(context.Background())
	var valueErr *ml.ValueError
	assert.ErrorAs(t, err, &valueErr)
}

func TestTrainHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTrainer(writeDataset(t, hrData)).Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
