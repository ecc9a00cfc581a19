package model

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const testManifest = "testdata/manifest.yaml"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floodRequest() domain.FloodAssessmentRequest {
	return domain.FloodAssessmentRequest{
		RainfallMM: 300, TemperatureC: 28, HumidityPct: 90, RiverDischarge: 500,
		WaterLevelM: 5, ElevationM: 10, PopulationDensity: 2000,
		InfrastructurePresent: 0, HistoricalFloods: 1,
		LandCover: domain.LandCoverWaterBody, SoilType: domain.SoilTypeClay,
	}
}

func dryRequest() domain.FloodAssessmentRequest {
	return domain.FloodAssessmentRequest{
		RainfallMM: 0, TemperatureC: 25, HumidityPct: 30, RiverDischarge: 0,
		WaterLevelM: 0, ElevationM: 200, PopulationDensity: 50,
		InfrastructurePresent: 1, HistoricalFloods: 0,
		LandCover: domain.LandCoverDesert, SoilType: domain.SoilTypeSandy,
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// --- manifest ---

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(testManifest)
	require.NoError(t, err)

	assert.Equal(t, "flood-demo", m.Name)
	assert.Equal(t, KindForest, m.Classifier.Kind)
	assert.Equal(t, filepath.Join("testdata", "scaler.json"), m.Scaler.Path)
	assert.Equal(t, filepath.Join("testdata", "forest.json"), m.Classifier.Path)
	assert.Equal(t, domain.FeatureNames(), m.Features)
}

func TestLoadManifest_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.yaml", "scaler:\n  path: s.json\nclassifier:\n  path: /abs/c.json\n")

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, KindForest, m.Classifier.Kind)
	assert.Equal(t, filepath.Base(dir), m.Name)
	assert.Equal(t, filepath.Join(dir, "s.json"), m.Scaler.Path)
	assert.Equal(t, "/abs/c.json", m.Classifier.Path)
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing scaler", "classifier:\n  path: c.json\n", "scaler.path"},
		{"missing classifier", "scaler:\n  path: s.json\n", "classifier.path"},
		{"unknown kind", "scaler:\n  path: s.json\nclassifier:\n  kind: svm\n  path: c.json\n", "unsupported classifier.kind"},
		{"bad yaml", "scaler: [", "parse manifest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "manifest.yaml", tt.content)
			_, err := LoadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read manifest")
}

// --- feature names ---

func TestCheckFeatureNames(t *testing.T) {
	require.NoError(t, checkFeatureNames("x", nil))
	require.NoError(t, checkFeatureNames("x", domain.FeatureNames()))

	swapped := domain.FeatureNames()
	swapped[9], swapped[10] = swapped[10], swapped[9]
	err := checkFeatureNames("scaler", swapped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 9")

	err = checkFeatureNames("scaler", domain.FeatureNames()[:18])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares 18 features")
}

// --- scaler ---

func TestStandardScaler_Normalize(t *testing.T) {
	mean := make([]float64, domain.FeatureCount)
	scale := make([]float64, domain.FeatureCount)
	for i := range scale {
		scale[i] = 1
	}
	mean[0], scale[0] = 100, 50
	scale[5] = 0 // constant column

	s, err := NewStandardScaler(mean, scale)
	require.NoError(t, err)

	in := domain.EncodeFeatures(floodRequest())
	out, err := s.Normalize(in)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, out[0], 1e-12)
	assert.Equal(t, in[5], out[5], "zero scale is treated as 1")
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, 300.0, in[0], "input must not change")
}

func TestStandardScaler_IdentityWhenUnset(t *testing.T) {
	s, err := NewStandardScaler(nil, nil)
	require.NoError(t, err)

	in := domain.EncodeFeatures(dryRequest())
	out, err := s.Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStandardScaler_WrongLength(t *testing.T) {
	_, err := NewStandardScaler([]float64{1, 2}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mean has 2 values")

	_, err = NewStandardScaler(nil, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale has 1 values")
}

func TestLoadStandardScaler(t *testing.T) {
	s, err := LoadStandardScaler("testdata/scaler.json")
	require.NoError(t, err)

	out, err := s.Normalize(domain.EncodeFeatures(floodRequest()))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, out[0], 1e-12)
	assert.InDelta(t, 2.0, out[13], 1e-12)
}

func TestLoadStandardScaler_FeatureOrderMismatch(t *testing.T) {
	names := domain.FeatureNames()
	names[0], names[1] = names[1], names[0]
	content := `{"feature_names_in": ["` + strings.Join(names, `","`) + `"]}`
	path := writeFile(t, t.TempDir(), "scaler.json", content)

	_, err := LoadStandardScaler(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scaler: feature 0")
}

func TestLoadStandardScaler_Corrupt(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scaler.json", "{not json")
	_, err := LoadStandardScaler(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scaler")
}

// --- forest ---

func stump(feature int, threshold float64, leftCounts, rightCounts []float64) treeFile {
	return treeFile{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{feature, -2, -2},
		Threshold:     []float64{threshold, -2, -2},
		Value:         [][]float64{{1, 1}, leftCounts, rightCounts},
	}
}

func TestForest_Classify(t *testing.T) {
	f, err := newForest(forestFile{
		NFeatures:  domain.FeatureCount,
		Classes:    []int64{0, 1},
		Estimators: []treeFile{stump(0, 100, []float64{9, 1}, []float64{1, 9})},
	})
	require.NoError(t, err)

	var v domain.FeatureVector
	v[0] = 100 // equal to threshold goes left
	label, err := f.Classify(v)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNoFlood, label)

	v[0] = 100.5
	label, err = f.Classify(v)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFlood, label)
}

func TestForest_AveragesNormalizedLeaves(t *testing.T) {
	f, err := newForest(forestFile{
		NFeatures: domain.FeatureCount,
		Classes:   []int64{0, 1},
		Estimators: []treeFile{
			stump(0, 0, []float64{100, 0}, []float64{0, 100}),
			stump(1, 0, []float64{1, 3}, []float64{3, 1}),
		},
	})
	require.NoError(t, err)

	var v domain.FeatureVector // both features 0: left leaves
	proba, err := f.Probabilities(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.625, proba[0], 1e-12)
	assert.InDelta(t, 0.375, proba[1], 1e-12)
}

func TestForest_TieGoesToFirstClass(t *testing.T) {
	f, err := newForest(forestFile{
		NFeatures:  domain.FeatureCount,
		Classes:    []int64{1, 0},
		Estimators: []treeFile{stump(0, 0, []float64{5, 5}, []float64{5, 5})},
	})
	require.NoError(t, err)

	label, err := f.Classify(domain.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFlood, label)
}

func TestForest_Validation(t *testing.T) {
	good := stump(0, 0, []float64{1, 0}, []float64{0, 1})

	tests := []struct {
		name string
		file forestFile
		want string
	}{
		{"wrong width", forestFile{NFeatures: 18, Classes: []int64{0, 1}, Estimators: []treeFile{good}}, "fitted on 18 features"},
		{"no classes", forestFile{NFeatures: 19, Estimators: []treeFile{good}}, "no classes"},
		{"bad class", forestFile{NFeatures: 19, Classes: []int64{0, 2}, Estimators: []treeFile{good}}, "unexpected class 2"},
		{"no trees", forestFile{NFeatures: 19, Classes: []int64{0, 1}}, "no estimators"},
		{"ragged arrays", forestFile{NFeatures: 19, Classes: []int64{0, 1}, Estimators: []treeFile{{
			ChildrenLeft: []int{-1}, ChildrenRight: []int{-1, -1}, Feature: []int{-2}, Threshold: []float64{0}, Value: [][]float64{{1, 0}},
		}}}, "differ in length"},
		{"single child", forestFile{NFeatures: 19, Classes: []int64{0, 1}, Estimators: []treeFile{{
			ChildrenLeft: []int{1, -1}, ChildrenRight: []int{-1, -1}, Feature: []int{0, -2}, Threshold: []float64{0, 0}, Value: [][]float64{{1, 0}, {1, 0}},
		}}}, "single child"},
		{"cycle", forestFile{NFeatures: 19, Classes: []int64{0, 1}, Estimators: []treeFile{{
			ChildrenLeft: []int{0, -1}, ChildrenRight: []int{1, -1}, Feature: []int{0, -2}, Threshold: []float64{0, 0}, Value: [][]float64{{1, 0}, {1, 0}},
		}}}, "out of range"},
		{"feature out of range", forestFile{NFeatures: 19, Classes: []int64{0, 1}, Estimators: []treeFile{stump(19, 0, []float64{1, 0}, []float64{0, 1})}}, "splits on feature 19"},
		{"leaf width", forestFile{NFeatures: 19, Classes: []int64{0, 1}, Estimators: []treeFile{stump(0, 0, []float64{1}, []float64{0, 1})}}, "class counts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newForest(tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestForest_EmptyLeafIsAnError(t *testing.T) {
	f, err := newForest(forestFile{
		NFeatures:  domain.FeatureCount,
		Classes:    []int64{0, 1},
		Estimators: []treeFile{stump(0, 0, []float64{0, 0}, []float64{0, 1})},
	})
	require.NoError(t, err)

	_, err = f.Classify(domain.FeatureVector{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty leaf")
}

func TestLoadForest_Corrupt(t *testing.T) {
	path := writeFile(t, t.TempDir(), "forest.json", `{"n_features_in": 19, "classes": [0, 1], "estimators": [`)
	_, err := LoadForest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse forest")

	_, err = LoadForest(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read forest")
}

// --- artifacts ---

func TestLoad_Scenarios(t *testing.T) {
	a, err := Load(testManifest, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, "flood-demo", a.Name)

	label, err := domain.Infer(a.Scaler, a.Classifier, domain.EncodeFeatures(floodRequest()))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelFlood, label)

	label, err = domain.Infer(a.Scaler, a.Classifier, domain.EncodeFeatures(dryRequest()))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelNoFlood, label)
}

func TestLoad_MissingArtifactIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "manifest.yaml", "scaler:\n  path: nope.json\nclassifier:\n  path: forest.json\n")

	_, err := Load(path, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scaler")
}

func TestLoad_ManifestFeatureMismatch(t *testing.T) {
	names := domain.FeatureNames()
	names[14], names[18] = names[18], names[14]

	var b strings.Builder
	b.WriteString("scaler:\n  path: s.json\nclassifier:\n  path: c.json\nfeatures:\n")
	for _, n := range names {
		b.WriteString("  - \"" + n + "\"\n")
	}
	path := writeFile(t, t.TempDir(), "manifest.yaml", b.String())

	_, err := Load(path, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest: feature 14")
}
