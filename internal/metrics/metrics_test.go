package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exposition(t *testing.T, m *Metrics) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "supply_intel.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestObserveTraining(t *testing.T) {
	m := New()

	m.ObserveTraining(ModelSimilarity, 12, 20*time.Millisecond, nil)
	m.ObserveTraining(ModelSimilarity, 0, 0, errors.New("cancelled"))

	out := exposition(t, m)
	assert.Contains(t, out, `supply_intel_training_runs_total{model="similarity",outcome="success"} 1`)
	assert.Contains(t, out, `supply_intel_training_runs_total{model="similarity",outcome="error"} 1`)
	assert.Contains(t, out, `supply_intel_training_records{model="similarity"} 12`)
	assert.Contains(t, out, `supply_intel_training_duration_seconds_count{model="similarity"} 1`)
}

func TestSetTrainedAndQueries(t *testing.T) {
	m := New()

	m.SetTrained(ModelForecast, true)
	m.ObserveQuery("recommend", false)
	m.ObserveQuery("recommend", false)

	out := exposition(t, m)
	assert.Contains(t, out, `supply_intel_model_trained{model="forecast"} 1`)
	assert.Contains(t, out, `supply_intel_queries_total{operation="recommend",ready="false"} 2`)

	m.SetTrained(ModelForecast, false)
	assert.Contains(t, exposition(t, m), `supply_intel_model_trained{model="forecast"} 0`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveTraining(ModelForecast, 1, time.Second, nil)
		m.SetTrained(ModelForecast, true)
		m.ObserveQuery("forecast", true)
		m.ObserveArtifact("save", nil)
	})
	assert.NoError(t, m.WriteTextfile("unused"))
	assert.Nil(t, m.Registry())
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveArtifact("save", nil)

	assert.Contains(t, exposition(t, m), `supply_intel_artifact_operations_total{operation="save",outcome="success"} 1`)
}
