package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// StreamTransformer implements Transformer: it decodes an assessment request
// from a stream message, assesses it, and serializes the result.
type StreamTransformer struct {
	assessor *Assessor
}

// NewTransformer creates a StreamTransformer backed by assessor.
func NewTransformer(assessor *Assessor) *StreamTransformer {
	return &StreamTransformer{assessor: assessor}
}

func (t *StreamTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	req, err := DecodeRequest(raw.Value)
	if err != nil {
		t.assessor.Reject(SourceStream, ReasonMalformed)
		return domain.OutputMessage{}, err
	}

	assessment, err := t.assessor.Assess(ctx, SourceStream, req)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	return SerializeAssessment(assessment, raw.Key)
}

// requestPayload mirrors domain.FloodAssessmentRequest with pointer fields so
// absent keys can be told apart from zero values.
type requestPayload struct {
	RainfallMM            *float64 `json:"rainfall_mm"`
	TemperatureC          *float64 `json:"temperature_c"`
	HumidityPct           *float64 `json:"humidity_pct"`
	RiverDischarge        *float64 `json:"river_discharge"`
	WaterLevelM           *float64 `json:"water_level_m"`
	ElevationM            *float64 `json:"elevation_m"`
	PopulationDensity     *float64 `json:"population_density"`
	InfrastructurePresent *int     `json:"infrastructure_present"`
	HistoricalFloods      *int     `json:"historical_floods"`
	LandCover             *string  `json:"land_cover"`
	SoilType              *string  `json:"soil_type"`
}

// DecodeRequest strictly decodes a JSON assessment request. Unknown keys,
// missing keys, and trailing data are errors. Range checks are left to
// FloodAssessmentRequest.Validate.
func DecodeRequest(data []byte) (domain.FloodAssessmentRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p requestPayload
	if err := dec.Decode(&p); err != nil {
		return domain.FloodAssessmentRequest{}, fmt.Errorf("decode assessment request: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domain.FloodAssessmentRequest{}, errors.New("decode assessment request: trailing data after object")
	}

	var missing []string
	f64 := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	i := func(name string, v *int) int {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	s := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}

	req := domain.FloodAssessmentRequest{
		RainfallMM:            f64("rainfall_mm", p.RainfallMM),
		TemperatureC:          f64("temperature_c", p.TemperatureC),
		HumidityPct:           f64("humidity_pct", p.HumidityPct),
		RiverDischarge:        f64("river_discharge", p.RiverDischarge),
		WaterLevelM:           f64("water_level_m", p.WaterLevelM),
		ElevationM:            f64("elevation_m", p.ElevationM),
		PopulationDensity:     f64("population_density", p.PopulationDensity),
		InfrastructurePresent: i("infrastructure_present", p.InfrastructurePresent),
		HistoricalFloods:      i("historical_floods", p.HistoricalFloods),
		LandCover:             domain.LandCover(s("land_cover", p.LandCover)),
		SoilType:              domain.SoilType(s("soil_type", p.SoilType)),
	}
	if len(missing) > 0 {
		return domain.FloodAssessmentRequest{}, fmt.Errorf("decode assessment request: missing fields %v", missing)
	}
	return req, nil
}

// SerializeAssessment marshals an assessment into a stream message. The
// request key is preserved when present so results stay partitioned with
// their requests; otherwise the assessment ID is used.
func SerializeAssessment(a domain.Assessment, key []byte) (domain.OutputMessage, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize assessment: %w", err)
	}
	if len(key) == 0 {
		key = []byte(a.ID)
	}
	return domain.OutputMessage{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"assessment_id": a.ID,
			"verdict":       a.Verdict.Label.String(),
			"assessed_at":   a.AssessedAt.Format(time.RFC3339),
		},
	}, nil
}
