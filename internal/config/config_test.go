package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	training := cfg.GetTraining()
	assert.Equal(t, "hr_data.csv", training.DatasetPath)
	assert.Equal(t, "Attrition", training.TargetColumn)
	assert.Empty(t, training.ExcludeColumns)
	assert.Equal(t, 1.0, training.RegularizationC)
	assert.Equal(t, 1000, training.MaxIterations)

	prediction := cfg.GetPrediction()
	assert.Equal(t, 0.5, prediction.Threshold)
	assert.Equal(t, "Attrition_Prediction", prediction.LabelColumn)
	assert.Equal(t, "Attrition_Probability", prediction.ProbabilityColumn)
	assert.Equal(t, 5, prediction.PreviewRows)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, "http", server.Frontend)
	assert.Equal(t, int64(50*1024*1024), server.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, server.ReadTimeout)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.True(t, cache.Enabled)
	assert.Equal(t, time.Hour, cache.TTL)
}

func TestInvalidDurations(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "forever")
	_, err := NewFromViper(v).GetCache()
	assert.Error(t, err)

	v = NewEmptyViper()
	v.Set("server.write_timeout", "soon")
	_, err = NewFromViper(v).GetServer()
	assert.Error(t, err)
}

func TestCacheTTLMustBePositiveWhenEnabled(t *testing.T) {
	for _, ttl := range []string{"0s", "-5m"} {
		v := NewEmptyViper()
		v.Set("cache.ttl", ttl)
		_, err := NewFromViper(v).GetCache()
		assert.Error(t, err, ttl)

		v.Set("cache.enabled", false)
		cfg, err := NewFromViper(v).GetCache()
		require.NoError(t, err, ttl)
		assert.False(t, cfg.Enabled)
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
training:
  dataset_path: /srv/hr.csv
  exclude_columns: [EmployeeNumber]
prediction:
  threshold: 0.4
cache:
  type: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/hr.csv", cfg.GetTraining().DatasetPath)
	assert.Equal(t, []string{"EmployeeNumber"}, cfg.GetTraining().ExcludeColumns)
	assert.Equal(t, 0.4, cfg.GetPrediction().Threshold)
	assert.Equal(t, "Attrition", cfg.GetTraining().TargetColumn)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cache.Type)

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
