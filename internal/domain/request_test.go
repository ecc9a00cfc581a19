package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLandCover(t *testing.T) {
	for _, lc := range LandCovers {
		got, err := ParseLandCover(string(lc))
		require.NoError(t, err)
		assert.Equal(t, lc, got)
	}

	tests := []string{"", "water body", "Water  Body", "Wetland", " Urban"}
	for _, in := range tests {
		_, err := ParseLandCover(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, ErrUnknownCategory)
	}
}

func TestParseSoilType(t *testing.T) {
	for _, st := range SoilTypes {
		got, err := ParseSoilType(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseSoilType("Gravel")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "soil_type", ve.Field)
}

func TestValidate_Scenarios(t *testing.T) {
	require.NoError(t, scenarioFlood().Validate())
	require.NoError(t, scenarioDry().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *FloodAssessmentRequest)
		field  string
		target error
	}{
		{"negative rainfall", func(r *FloodAssessmentRequest) { r.RainfallMM = -0.1 }, "rainfall_mm", ErrOutOfRange},
		{"temperature too low", func(r *FloodAssessmentRequest) { r.TemperatureC = -10.5 }, "temperature_c", ErrOutOfRange},
		{"temperature too high", func(r *FloodAssessmentRequest) { r.TemperatureC = 61 }, "temperature_c", ErrOutOfRange},
		{"humidity above 100", func(r *FloodAssessmentRequest) { r.HumidityPct = 101 }, "humidity_pct", ErrOutOfRange},
		{"humidity negative", func(r *FloodAssessmentRequest) { r.HumidityPct = -1 }, "humidity_pct", ErrOutOfRange},
		{"negative discharge", func(r *FloodAssessmentRequest) { r.RiverDischarge = -5 }, "river_discharge", ErrOutOfRange},
		{"negative water level", func(r *FloodAssessmentRequest) { r.WaterLevelM = -1 }, "water_level_m", ErrOutOfRange},
		{"elevation below floor", func(r *FloodAssessmentRequest) { r.ElevationM = -51 }, "elevation_m", ErrOutOfRange},
		{"negative population", func(r *FloodAssessmentRequest) { r.PopulationDensity = -1 }, "population_density", ErrOutOfRange},
		{"infrastructure 2", func(r *FloodAssessmentRequest) { r.InfrastructurePresent = 2 }, "infrastructure_present", ErrOutOfRange},
		{"historical floods -1", func(r *FloodAssessmentRequest) { r.HistoricalFloods = -1 }, "historical_floods", ErrOutOfRange},
		{"NaN rainfall", func(r *FloodAssessmentRequest) { r.RainfallMM = math.NaN() }, "rainfall_mm", ErrOutOfRange},
		{"infinite elevation", func(r *FloodAssessmentRequest) { r.ElevationM = math.Inf(1) }, "elevation_m", ErrOutOfRange},
		{"unknown land cover", func(r *FloodAssessmentRequest) { r.LandCover = "Tundra" }, "land_cover", ErrUnknownCategory},
		{"empty soil type", func(r *FloodAssessmentRequest) { r.SoilType = "" }, "soil_type", ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := scenarioFlood()
			tt.mutate(&r)

			err := r.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, IsValidation(err))

			fields := ValidationErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	r := scenarioFlood()
	r.HumidityPct = 150
	r.TemperatureC = 99
	r.SoilType = "Rock"

	fields := ValidationErrors(r.Validate())
	require.Len(t, fields, 3)
	names := []string{fields[0].Field, fields[1].Field, fields[2].Field}
	assert.ElementsMatch(t, []string{"humidity_pct", "temperature_c", "soil_type"}, names)
}

func TestValidationError_Message(t *testing.T) {
	r := scenarioFlood()
	r.HumidityPct = 150
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "humidity_pct")
	assert.Contains(t, err.Error(), "0 to 100")

	r = scenarioFlood()
	r.RainfallMM = -3
	assert.Contains(t, r.Validate().Error(), ">= 0")
}

func TestIsValidation_OtherErrors(t *testing.T) {
	assert.False(t, IsValidation(errors.New("boom")))
	assert.False(t, IsValidation(nil))
	assert.Nil(t, ValidationErrors(nil))
}
