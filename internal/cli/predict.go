package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/model"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/pipeline"
)

type predictOptions struct {
	req            domain.FloodAssessmentRequest
	infrastructure bool
	floods         bool
	landCover      string
	soilType       string
	asJSON         bool
}

func newPredictCmd(a *app) *cobra.Command {
	var opts predictOptions

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Assess a single set of observations",
		Long: `Assess one set of observations and print the verdict.

Examples:
  floodrisk predict --rainfall 300 --temperature 28 --humidity 90 \
    --discharge 500 --water-level 5 --elevation 10 --population-density 2000 \
    --historical-floods --land-cover "Water Body" --soil-type Clay
  floodrisk predict ... --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPredict(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.req.RainfallMM, "rainfall", 0, "daily rainfall in mm (>= 0)")
	f.Float64Var(&opts.req.TemperatureC, "temperature", 0, "air temperature in °C (-10 to 60)")
	f.Float64Var(&opts.req.HumidityPct, "humidity", 0, "relative humidity in % (0 to 100)")
	f.Float64Var(&opts.req.RiverDischarge, "discharge", 0, "main river discharge in m³/s (>= 0)")
	f.Float64Var(&opts.req.WaterLevelM, "water-level", 0, "river or water table height in m (>= 0)")
	f.Float64Var(&opts.req.ElevationM, "elevation", 0, "elevation above sea level in m (>= -50)")
	f.Float64Var(&opts.req.PopulationDensity, "population-density", 0, "people per sq km (>= 0)")
	f.BoolVar(&opts.infrastructure, "infrastructure", false, "flood protection infrastructure present")
	f.BoolVar(&opts.floods, "historical-floods", false, "past floods recorded in this area")
	f.StringVar(&opts.landCover, "land-cover", "", "one of Agricultural, Desert, Forest, Urban, Water Body")
	f.StringVar(&opts.soilType, "soil-type", "", "one of Clay, Loam, Peat, Sandy, Silt")
	f.BoolVar(&opts.asJSON, "json", false, "print the full assessment as JSON")

	for _, name := range []string{
		"rainfall", "temperature", "humidity", "discharge", "water-level",
		"elevation", "population-density", "land-cover", "soil-type",
	} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func (a *app) runPredict(ctx context.Context, out io.Writer, opts predictOptions) error {
	req := opts.req
	if opts.infrastructure {
		req.InfrastructurePresent = 1
	}
	if opts.floods {
		req.HistoricalFloods = 1
	}

	lc, err := domain.ParseLandCover(opts.landCover)
	if err != nil {
		return err
	}
	st, err := domain.ParseSoilType(opts.soilType)
	if err != nil {
		return err
	}
	req.LandCover, req.SoilType = lc, st

	artifacts, err := model.Load(a.cfg.ModelManifest, a.logger)
	if err != nil {
		return fmt.Errorf("load model artifacts: %w", err)
	}
	defer artifacts.Close() //nolint:errcheck // read-only artifacts, nothing to flush

	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	assessor := pipeline.NewAssessor(artifacts.Scaler, artifacts.Classifier, artifacts.Name, nil, metrics, a.logger)

	assessment, err := assessor.Assess(ctx, pipeline.SourceCLI, req)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(assessment)
	}
	_, err = fmt.Fprintf(out, "%s\n%s\n", assessment.Verdict.Message, assessment.Verdict.Disclaimer)
	return err
}
