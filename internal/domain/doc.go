// Package domain models a flood risk assessment: the observations a user
// submits, the feature vector the trained model consumes, and the verdict
// shown back to the user.
//
// # Observations
//
// A [FloodAssessmentRequest] carries nine numeric observations and two
// categorical selections. Accepted ranges match the collection form:
//
//	rainfall_mm          >= 0
//	temperature_c        -10 .. 60
//	humidity_pct         0 .. 100
//	river_discharge      >= 0      (m³/s)
//	water_level_m        >= 0
//	elevation_m          >= -50    (above sea level)
//	population_density   >= 0      (people per km²)
//	infrastructure       0 or 1    (1 = protective infrastructure present)
//	historical_floods    0 or 1    (1 = area floods often)
//
// Land cover is one of Agricultural, Desert, Forest, Urban, Water Body.
// Soil type is one of Clay, Loam, Peat, Sandy, Silt.
//
// # Feature Order
//
// The classifier and scaler artifacts were fitted on 19 columns in a fixed
// order: the nine observations as-is, then five land cover indicators, then
// five soil type indicators, each group in the category order listed above.
// Column names follow the training data ("Land Cover_Water Body",
// "Soil Type_Clay"). See [FeatureNames].
//
// A different order does not fail; it yields a meaningless prediction. The
// order is frozen here and pinned by regression tests.
//
// # Categories
//
// Category values are matched exactly. Unknown values are rejected by
// [ParseLandCover], [ParseSoilType] and [FloodAssessmentRequest.Validate] at
// every entry point. [EncodeFeatures] panics if one slips through.
//
// # Verdict
//
// Label 1 renders a flood warning, label 0 a reassurance. Both carry the
// same disclaimer that sudden extreme events are not modelled.
package domain
