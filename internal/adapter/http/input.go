package http

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
)

// assessmentInput is the bound form or JSON body. Pointer fields let
// `required` tell an absent or null JSON value from zero. Form binding turns
// an empty value into zero, so form posts are checked with blankFields first.
// The binding tags mirror FloodAssessmentRequest.Validate, which still runs
// afterwards.
type assessmentInput struct {
	RainfallMM            *float64 `form:"rainfall_mm" json:"rainfall_mm" binding:"required,gte=0"`
	TemperatureC          *float64 `form:"temperature_c" json:"temperature_c" binding:"required,gte=-10,lte=60"`
	HumidityPct           *float64 `form:"humidity_pct" json:"humidity_pct" binding:"required,gte=0,lte=100"`
	RiverDischarge        *float64 `form:"river_discharge" json:"river_discharge" binding:"required,gte=0"`
	WaterLevelM           *float64 `form:"water_level_m" json:"water_level_m" binding:"required,gte=0"`
	ElevationM            *float64 `form:"elevation_m" json:"elevation_m" binding:"required,gte=-50"`
	PopulationDensity     *float64 `form:"population_density" json:"population_density" binding:"required,gte=0"`
	InfrastructurePresent *int     `form:"infrastructure_present" json:"infrastructure_present" binding:"required,oneof=0 1"`
	HistoricalFloods      *int     `form:"historical_floods" json:"historical_floods" binding:"required,oneof=0 1"`
	LandCover             string   `form:"land_cover" json:"land_cover" binding:"required"`
	SoilType              string   `form:"soil_type" json:"soil_type" binding:"required"`
}

func (in assessmentInput) request() domain.FloodAssessmentRequest {
	return domain.FloodAssessmentRequest{
		RainfallMM:            deref(in.RainfallMM),
		TemperatureC:          deref(in.TemperatureC),
		HumidityPct:           deref(in.HumidityPct),
		RiverDischarge:        deref(in.RiverDischarge),
		WaterLevelM:           deref(in.WaterLevelM),
		ElevationM:            deref(in.ElevationM),
		PopulationDensity:     deref(in.PopulationDensity),
		InfrastructurePresent: deref(in.InfrastructurePresent),
		HistoricalFloods:      deref(in.HistoricalFloods),
		LandCover:             domain.LandCover(in.LandCover),
		SoilType:              domain.SoilType(in.SoilType),
	}
}

// formFields lists every form input name in display order.
var formFields = []string{
	"rainfall_mm",
	"temperature_c",
	"humidity_pct",
	"river_discharge",
	"water_level_m",
	"elevation_m",
	"population_density",
	"infrastructure_present",
	"historical_floods",
	"land_cover",
	"soil_type",
}

// blankFields reports form inputs that were submitted empty.
func blankFields(form url.Values) []fieldError {
	var out []fieldError
	for _, name := range formFields {
		vs, ok := form[name]
		if !ok || len(vs) == 0 {
			continue
		}
		if strings.TrimSpace(vs[0]) == "" {
			out = append(out, fieldError{Field: name, Message: name + " is required"})
		}
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// fieldError is one rejected field as reported to clients.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// describeErrors turns binding or domain validation failures into per-field
// messages. ok is false when err is neither.
func describeErrors(err error) (fields []fieldError, ok bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Message: bindingMessage(fe)})
		}
		return fields, true
	}
	if domain.IsValidation(err) {
		for _, ve := range domain.ValidationErrors(err) {
			fields = append(fields, fieldError{Field: ve.Field, Message: ve.Error()})
		}
		return fields, true
	}
	return nil, false
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// rejectReason classifies a bind failure for metrics.
func rejectReason(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pipeline.ReasonMalformed
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return pipeline.ReasonMalformed
		}
	}
	return pipeline.ReasonOutOfRange
}

var tagNamesOnce sync.Once

// registerTagNames makes validator report fields by their JSON name.
func registerTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
