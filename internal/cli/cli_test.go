package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suppliersYAML = `
- company_name: Acme Foundry
  business_type: manufacturer
  description: precision steel castings for automotive parts
  category: metals
  rating: 0.9
- company_name: Globex Packaging
  business_type: wholesaler
  description: corrugated cardboard boxes and shipping materials
  category: packaging
- company_name: Initech Textiles
  business_type: distributor
  description: organic cotton fabric and yarn
`

type workspace struct {
	dir    string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := "model:\n  path: " + filepath.Join(dir, "model.json") + "\n" +
		"storage:\n  path: " + filepath.Join(dir, "activity.db") + "\n" +
		"logging:\n  level: error\n"

	ws := &workspace{dir: dir, config: filepath.Join(dir, "supply-intel.yaml")}
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0644))
	return ws
}

func (ws *workspace) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ws.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (ws *workspace) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", ws.config}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func demandJSON(t *testing.T, n int) string {
	t.Helper()

	examples := make([]forecast.DemandExample, n)
	for i := range examples {
		month := i%12 + 1
		prev := 100 + float64(i%5)*10
		examples[i] = forecast.DemandExample{
			Category:       i % 2,
			Season:         (month-1)/3 + 1,
			Month:          month,
			PreviousDemand: prev,
			Demand:         prev + float64(month%3)*5,
		}
	}

	data, err := json.Marshal(examples)
	require.NoError(t, err)
	return string(data)
}

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{0.95, "high"},
		{0.81, "high"},
		{0.8, "medium"},
		{0.61, "medium"},
		{0.6, "low"},
		{0.5, "low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceLevel(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestScoreVerdict(t *testing.T) {
	assert.Equal(t, "Highly recommended", scoreVerdict(0.84))
	assert.Equal(t, "Recommended", scoreVerdict(0.8))
	assert.Equal(t, "Consider alternatives", scoreVerdict(0.6))
}

func TestParseStatuses(t *testing.T) {
	assert.Nil(t, parseStatuses(""))
	assert.Equal(t, []scoring.Order{{Status: "delivered"}, {Status: "cancelled"}},
		parseStatuses(" Delivered, ,cancelled"))
}

func TestDecodeFile(t *testing.T) {
	ws := newWorkspace(t)

	var fromYAML []forecast.DemandExample
	require.NoError(t, decodeFile(ws.write(t, "d.yaml", "- product_category: 2\n  month: 5\n  demand: 30\n"), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, 2, fromYAML[0].Category)
	assert.Equal(t, 30.0, fromYAML[0].Demand)

	var fromJSON []forecast.DemandExample
	require.NoError(t, decodeFile(ws.write(t, "d.json", `[{"product_category":1,"month":3}]`), &fromJSON))
	assert.Equal(t, 3, fromJSON[0].Month)

	assert.Error(t, decodeFile(ws.write(t, "bad.json", "{"), &fromJSON))
	assert.Error(t, decodeFile(filepath.Join(ws.dir, "missing.yaml"), &fromJSON))
}

func TestUntrainedQueries(t *testing.T) {
	ws := newWorkspace(t)

	stdout, stderr, err := ws.run(t, "recommend", "--description", "steel castings")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "not trained")

	stdout, _, err = ws.run(t, "recommend", "--description", "steel castings", "--json")
	require.NoError(t, err)
	var rec recommendOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.False(t, rec.Ready)
	assert.Empty(t, rec.Recommendations)

	stdout, _, err = ws.run(t, "forecast", "--category", "1", "--month", "1", "--previous", "100", "--json")
	require.NoError(t, err)
	var f forecastOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &f))
	assert.False(t, f.Trained)
	assert.Empty(t, f.ConfidenceLevel)
}

func TestTrainAndQuery(t *testing.T) {
	ws := newWorkspace(t)
	suppliersFile := ws.write(t, "suppliers.yaml", suppliersYAML)
	demandFile := ws.write(t, "demand.json", demandJSON(t, 30))

	stdout, _, err := ws.run(t, "train", "--suppliers", suppliersFile, "--demand", demandFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Supplier matching: 3 suppliers")
	assert.Contains(t, stdout, "Demand forecasting: 100 trees on 24 examples")
	assert.FileExists(t, filepath.Join(ws.dir, "model.json"))

	stdout, _, err = ws.run(t, "recommend", "--description", "steel castings for automotive parts", "--top", "2", "--json")
	require.NoError(t, err)
	var rec recommendOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.True(t, rec.Ready)
	require.Len(t, rec.Recommendations, 2)
	assert.Equal(t, "Acme Foundry", rec.Recommendations[0].CompanyName)

	stdout, _, err = ws.run(t, "recommend", "--description", "cotton yarn")
	require.NoError(t, err)
	assert.Contains(t, stdout, "RANK")
	assert.Contains(t, stdout, "Initech Textiles")

	stdout, _, err = ws.run(t, "similar", "--supplier", "0", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.True(t, rec.Ready)
	assert.Len(t, rec.Recommendations, 2)

	stdout, _, err = ws.run(t, "forecast", "--category", "1", "--season", "1", "--month", "2", "--previous", "110", "--json")
	require.NoError(t, err)
	var f forecastOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &f))
	assert.True(t, f.Trained)
	assert.Greater(t, f.Forecast.Forecast, 0)
	assert.Contains(t, []string{"high", "medium", "low"}, f.ConfidenceLevel)

	stdout, _, err = ws.run(t, "status", "--json")
	require.NoError(t, err)
	var st statusOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.True(t, st.Status.SimilarityTrained)
	assert.True(t, st.Status.ForecastTrained)
	assert.True(t, st.Activity)
	assert.Len(t, st.RecentRuns, 2)

	counts := map[string]int{}
	for _, q := range st.Queries {
		counts[q.Operation] = q.Total
	}
	assert.Equal(t, 2, counts["recommend"])
	assert.Equal(t, 1, counts["similar"])
	assert.Equal(t, 1, counts["forecast"])
}

func TestTrainKeepsOtherModel(t *testing.T) {
	ws := newWorkspace(t)
	suppliersFile := ws.write(t, "suppliers.yaml", suppliersYAML)
	demandFile := ws.write(t, "demand.json", demandJSON(t, 10))

	_, _, err := ws.run(t, "train", "--suppliers", suppliersFile)
	require.NoError(t, err)
	_, _, err = ws.run(t, "train", "--demand", demandFile)
	require.NoError(t, err)

	stdout, _, err := ws.run(t, "status", "--json")
	require.NoError(t, err)
	var st statusOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.True(t, st.Status.SimilarityTrained)
	assert.True(t, st.Status.ForecastTrained)

	_, _, err = ws.run(t, "train", "--demand", demandFile, "--fresh")
	require.NoError(t, err)

	stdout, _, err = ws.run(t, "status", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &st))
	assert.False(t, st.Status.SimilarityTrained)
	assert.True(t, st.Status.ForecastTrained)
}

func TestTrainRequiresInput(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := ws.run(t, "train")
	assert.Error(t, err)
}

func TestRecommendTrainsLazily(t *testing.T) {
	ws := newWorkspace(t)
	suppliersFile := ws.write(t, "suppliers.yaml", suppliersYAML)
	buyerFile := ws.write(t, "buyer.json", `{"company_name":"Boxco","business_type":"retailer","description":"cardboard shipping boxes"}`)

	stdout, _, err := ws.run(t, "recommend", "--buyer", buyerFile, "--suppliers", suppliersFile, "--json")
	require.NoError(t, err)
	var rec recommendOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	require.True(t, rec.Ready)
	assert.Equal(t, "Globex Packaging", rec.Recommendations[0].CompanyName)

	// The lazily trained index was persisted
	stdout, _, err = ws.run(t, "recommend", "--buyer", buyerFile, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.True(t, rec.Ready)
}

func TestScoreCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := ws.run(t, "score", "--rating", "0.9", "--statuses", "delivered,delivered", "--json")
	require.NoError(t, err)
	var out scoreOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 0.84, out.Score)
	assert.Equal(t, "Highly recommended", out.Recommendation)
	assert.True(t, out.Breakdown.HasHistory)

	// Without order history the completion weight is lost
	stdout, _, err = ws.run(t, "score", "--rating", "1", "--response-hours", "1", "--quality", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Score: 0.70 (Recommended)")
	assert.Contains(t, stdout, "n/a (no order history)")
}

func TestCorruptModelFails(t *testing.T) {
	ws := newWorkspace(t)
	ws.write(t, "model.json", "{broken")

	_, _, err := ws.run(t, "forecast", "--category", "1", "--previous", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load model")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "cfg", "supply-intel.yaml")

	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"config", "init", "--config", path})
	require.NoError(t, root.Execute())
	assert.FileExists(t, path)

	root = NewRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"config", "init", "--config", path})
	assert.Error(t, root.Execute())

	stdout.Reset()
	root = NewRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"config", "show", "--config", path, "--log-level", "debug"})
	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "level: debug")
	assert.Contains(t, stdout.String(), "default_top_n: 5")
}
