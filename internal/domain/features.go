package domain

import "fmt"

// FeatureCount is the width of the vector the model artifacts were fitted on.
const FeatureCount = 19

// Column offsets of the two one-hot groups.
const (
	landCoverOffset = 9
	soilTypeOffset  = landCoverOffset + 5
)

// featureNames is the training column order. Do not reorder.
var featureNames = [FeatureCount]string{
	"Rainfall (mm)",
	"Temperature (°C)",
	"Humidity (%)",
	"River Discharge (m³/s)",
	"Water Level (m)",
	"Elevation (m)",
	"Population Density",
	"Infrastructure",
	"Historical Floods",
	"Land Cover_Agricultural",
	"Land Cover_Desert",
	"Land Cover_Forest",
	"Land Cover_Urban",
	"Land Cover_Water Body",
	"Soil Type_Clay",
	"Soil Type_Loam",
	"Soil Type_Peat",
	"Soil Type_Sandy",
	"Soil Type_Silt",
}

// FeatureNames returns a copy of the feature column names in vector order.
func FeatureNames() []string {
	out := make([]string, FeatureCount)
	copy(out, featureNames[:])
	return out
}

// FeatureVector is the encoded, fixed-order model input.
// It is a value type; passing it never shares storage.
type FeatureVector [FeatureCount]float64

// Slice returns the values as a fresh slice.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// Named maps each column name to its value.
func (v FeatureVector) Named() map[string]float64 {
	m := make(map[string]float64, FeatureCount)
	for i, name := range featureNames {
		m[name] = v[i]
	}
	return m
}

// Get returns the value of the named column.
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, n := range featureNames {
		if n == name {
			return v[i], true
		}
	}
	return 0, false
}

// FeatureVectorFromSlice copies vals into a FeatureVector.
func FeatureVectorFromSlice(vals []float64) (FeatureVector, error) {
	var v FeatureVector
	if len(vals) != FeatureCount {
		return v, fmt.Errorf("feature vector: expected %d values, got %d", FeatureCount, len(vals))
	}
	copy(v[:], vals)
	return v, nil
}

// EncodeFeatures maps a validated request onto the model's column order:
// observations verbatim, then one-hot land cover, then one-hot soil type.
// It panics on a category outside the closed set; callers validate first.
func EncodeFeatures(r FloodAssessmentRequest) FeatureVector {
	var v FeatureVector

	v[0] = r.RainfallMM
	v[1] = r.TemperatureC
	v[2] = r.HumidityPct
	v[3] = r.RiverDischarge
	v[4] = r.WaterLevelM
	v[5] = r.ElevationM
	v[6] = r.PopulationDensity
	v[7] = float64(r.InfrastructurePresent)
	v[8] = float64(r.HistoricalFloods)

	v[landCoverOffset+oneHotIndex(LandCovers, r.LandCover)] = 1
	v[soilTypeOffset+oneHotIndex(SoilTypes, r.SoilType)] = 1

	return v
}

func oneHotIndex[T ~string](categories []T, value T) int {
	for i, c := range categories {
		if c == value {
			return i
		}
	}
	panic(fmt.Sprintf("domain: %T %q is not a known category", value, string(value)))
}
