package domain

import (
	"errors"
	"fmt"
	"math"
)

// LandCover is the dominant land use around the assessed location.
type LandCover string

const (
	LandCoverAgricultural LandCover = "Agricultural"
	LandCoverDesert       LandCover = "Desert"
	LandCoverForest       LandCover = "Forest"
	LandCoverUrban        LandCover = "Urban"
	LandCoverWaterBody    LandCover = "Water Body"
)

// LandCovers lists every land cover category in one-hot column order.
var LandCovers = []LandCover{
	LandCoverAgricultural,
	LandCoverDesert,
	LandCoverForest,
	LandCoverUrban,
	LandCoverWaterBody,
}

// SoilType is the main soil composition around the assessed location.
type SoilType string

const (
	SoilTypeClay  SoilType = "Clay"
	SoilTypeLoam  SoilType = "Loam"
	SoilTypePeat  SoilType = "Peat"
	SoilTypeSandy SoilType = "Sandy"
	SoilTypeSilt  SoilType = "Silt"
)

// SoilTypes lists every soil type category in one-hot column order.
var SoilTypes = []SoilType{
	SoilTypeClay,
	SoilTypeLoam,
	SoilTypePeat,
	SoilTypeSandy,
	SoilTypeSilt,
}

// ParseLandCover matches s exactly against the known land cover categories.
func ParseLandCover(s string) (LandCover, error) {
	for _, lc := range LandCovers {
		if string(lc) == s {
			return lc, nil
		}
	}
	return "", &ValidationError{Field: "land_cover", Value: s, Err: ErrUnknownCategory}
}

// ParseSoilType matches s exactly against the known soil type categories.
func ParseSoilType(s string) (SoilType, error) {
	for _, st := range SoilTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "soil_type", Value: s, Err: ErrUnknownCategory}
}

// FloodAssessmentRequest is one submission of local observations.
// It is built fresh per submission and never modified afterwards.
type FloodAssessmentRequest struct {
	RainfallMM            float64   `json:"rainfall_mm"`
	TemperatureC          float64   `json:"temperature_c"`
	HumidityPct           float64   `json:"humidity_pct"`
	RiverDischarge        float64   `json:"river_discharge"`
	WaterLevelM           float64   `json:"water_level_m"`
	ElevationM            float64   `json:"elevation_m"`
	PopulationDensity     float64   `json:"population_density"`
	InfrastructurePresent int       `json:"infrastructure_present"`
	HistoricalFloods      int       `json:"historical_floods"`
	LandCover             LandCover `json:"land_cover"`
	SoilType              SoilType  `json:"soil_type"`
}

// Observation bounds. Unbounded sides use ±Inf.
const (
	MinTemperatureC = -10
	MaxTemperatureC = 60
	MinHumidityPct  = 0
	MaxHumidityPct  = 100
	MinElevationM   = -50
)

// Validate checks every field against its accepted range and category set.
// All violations are reported, joined; each is a *ValidationError.
func (r FloodAssessmentRequest) Validate() error {
	var errs []error

	check := func(field string, v, lo, hi float64) {
		if !inRange(v, lo, hi) {
			errs = append(errs, &ValidationError{
				Field: field,
				Value: v,
				Err:   ErrOutOfRange,
				Bound: describeRange(lo, hi),
			})
		}
	}

	inf := math.Inf(1)
	check("rainfall_mm", r.RainfallMM, 0, inf)
	check("temperature_c", r.TemperatureC, MinTemperatureC, MaxTemperatureC)
	check("humidity_pct", r.HumidityPct, MinHumidityPct, MaxHumidityPct)
	check("river_discharge", r.RiverDischarge, 0, inf)
	check("water_level_m", r.WaterLevelM, 0, inf)
	check("elevation_m", r.ElevationM, MinElevationM, inf)
	check("population_density", r.PopulationDensity, 0, inf)

	if r.InfrastructurePresent != 0 && r.InfrastructurePresent != 1 {
		errs = append(errs, &ValidationError{Field: "infrastructure_present", Value: r.InfrastructurePresent, Err: ErrOutOfRange, Bound: "0 or 1"})
	}
	if r.HistoricalFloods != 0 && r.HistoricalFloods != 1 {
		errs = append(errs, &ValidationError{Field: "historical_floods", Value: r.HistoricalFloods, Err: ErrOutOfRange, Bound: "0 or 1"})
	}

	if _, err := ParseLandCover(string(r.LandCover)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseSoilType(string(r.SoilType)); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// inRange reports whether v is a finite number within [lo, hi].
// NaN fails every comparison and is rejected.
func inRange(v, lo, hi float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= lo && v <= hi
}

func describeRange(lo, hi float64) string {
	switch {
	case math.IsInf(hi, 1):
		return fmt.Sprintf(">= %g", lo)
	default:
		return fmt.Sprintf("%g to %g", lo, hi)
	}
}
