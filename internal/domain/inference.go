package domain

import "fmt"

// Scaler applies the fitted numeric transform to an encoded vector.
type Scaler interface {
	Normalize(v FeatureVector) (FeatureVector, error)
}

// Classifier turns a normalized vector into a flood/no-flood label.
type Classifier interface {
	Classify(v FeatureVector) (Label, error)
}

// Infer runs the scaler then the classifier. Neither input is mutated.
func Infer(scaler Scaler, classifier Classifier, v FeatureVector) (Label, error) {
	scaled, err := scaler.Normalize(v)
	if err != nil {
		return 0, fmt.Errorf("normalize features: %w", err)
	}
	label, err := classifier.Classify(scaled)
	if err != nil {
		return 0, fmt.Errorf("classify features: %w", err)
	}
	return label, nil
}
