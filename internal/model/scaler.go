package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// StandardScaler applies (x - mean) / scale column-wise, the transform of a
// fitted standard scaler. It is read-only after load.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// scalerFile mirrors the fitted attributes exported from the training side.
type scalerFile struct {
	FeatureNames []string  `json:"feature_names_in"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// LoadStandardScaler reads a scaler artifact from a JSON file.
func LoadStandardScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scaler %s: %w", path, err)
	}
	if err := checkFeatureNames("scaler", f.FeatureNames); err != nil {
		return nil, err
	}
	return NewStandardScaler(f.Mean, f.Scale)
}

// NewStandardScaler builds a scaler from fitted parameters. A nil mean means
// no centering, a nil scale means unit variance. Zero scale entries come
// from constant training columns and are treated as 1.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{
		mean:  make([]float64, domain.FeatureCount),
		scale: make([]float64, domain.FeatureCount),
	}

	switch len(mean) {
	case 0:
	case domain.FeatureCount:
		copy(s.mean, mean)
	default:
		return nil, fmt.Errorf("scaler: mean has %d values, want %d", len(mean), domain.FeatureCount)
	}

	switch len(scale) {
	case 0:
		floats.AddConst(1, s.scale)
	case domain.FeatureCount:
		copy(s.scale, scale)
	default:
		return nil, fmt.Errorf("scaler: scale has %d values, want %d", len(scale), domain.FeatureCount)
	}

	for i, v := range s.scale {
		if v == 0 {
			s.scale[i] = 1
		}
	}
	if floats.HasNaN(s.mean) || floats.HasNaN(s.scale) {
		return nil, errors.New("scaler: parameters contain NaN")
	}

	return s, nil
}

// Normalize returns the scaled copy of v.
func (s *StandardScaler) Normalize(v domain.FeatureVector) (domain.FeatureVector, error) {
	x := v.Slice()
	floats.Sub(x, s.mean)
	floats.Div(x, s.scale)
	if floats.HasNaN(x) {
		return domain.FeatureVector{}, errors.New("scaler: result contains NaN")
	}
	return domain.FeatureVectorFromSlice(x)
}
