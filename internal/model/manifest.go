// Package model loads the externally trained scaler and classifier artifacts
// and adapts them to domain.Scaler and domain.Classifier.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Classifier backends.
const (
	KindForest = "forest"
	KindONNX   = "onnx"
)

// Manifest describes one scaler/classifier pair. Relative paths resolve
// against the directory containing the manifest.
//
//	name: rf-flood-india
//	features: ["Rainfall (mm)", ...]   # optional, checked against the encoder
//	scaler:
//	  path: scaler_flood.json
//	classifier:
//	  kind: forest                      # or onnx
//	  path: rf_classifier_flood.json
//	  runtime_library: /usr/lib/libonnxruntime.so   # onnx only
type Manifest struct {
	Name       string             `yaml:"name"`
	Features   []string           `yaml:"features"`
	Scaler     ScalerManifest     `yaml:"scaler"`
	Classifier ClassifierManifest `yaml:"classifier"`
}

type ScalerManifest struct {
	Path string `yaml:"path"`
}

type ClassifierManifest struct {
	Kind           string `yaml:"kind"`
	Path           string `yaml:"path"`
	RuntimeLibrary string `yaml:"runtime_library"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if m.Scaler.Path == "" {
		return nil, errors.New("manifest: scaler.path is required")
	}
	if m.Classifier.Path == "" {
		return nil, errors.New("manifest: classifier.path is required")
	}
	switch m.Classifier.Kind {
	case "":
		m.Classifier.Kind = KindForest
	case KindForest, KindONNX:
	default:
		return nil, fmt.Errorf("manifest: unsupported classifier.kind %q", m.Classifier.Kind)
	}
	if m.Name == "" {
		m.Name = filepath.Base(filepath.Dir(path))
	}

	dir := filepath.Dir(path)
	m.Scaler.Path = resolve(dir, m.Scaler.Path)
	m.Classifier.Path = resolve(dir, m.Classifier.Path)
	if m.Classifier.RuntimeLibrary != "" {
		m.Classifier.RuntimeLibrary = resolve(dir, m.Classifier.RuntimeLibrary)
	}

	return &m, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
