package model

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// Artifacts is the loaded scaler/classifier pair. Built once at startup and
// shared read-only by every request handler.
type Artifacts struct {
	Name       string
	Scaler     domain.Scaler
	Classifier domain.Classifier

	close func() error
}

// Load reads the manifest and both artifacts it references. Any failure is
// returned; callers treat it as fatal.
func Load(manifestPath string, logger *slog.Logger) (*Artifacts, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if err := checkFeatureNames("manifest", m.Features); err != nil {
		return nil, err
	}

	scaler, err := LoadStandardScaler(m.Scaler.Path)
	if err != nil {
		return nil, err
	}

	a := &Artifacts{Name: m.Name, Scaler: scaler}

	switch m.Classifier.Kind {
	case KindONNX:
		c, err := NewONNXClassifier(m.Classifier.Path, m.Classifier.RuntimeLibrary)
		if err != nil {
			return nil, err
		}
		a.Classifier = c
		a.close = c.Close
	default:
		c, err := LoadForest(m.Classifier.Path)
		if err != nil {
			return nil, err
		}
		a.Classifier = c
	}

	logger.Info("model artifacts loaded",
		"model", a.Name,
		"classifier", m.Classifier.Kind,
		"classifier_path", m.Classifier.Path,
		"scaler_path", m.Scaler.Path,
	)
	return a, nil
}

// Close releases classifier resources, if any.
func (a *Artifacts) Close() error {
	if a.close == nil {
		return nil
	}
	if err := a.close(); err != nil {
		return fmt.Errorf("close classifier: %w", err)
	}
	return nil
}
