package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// leaf marks a node without children in the exported tree arrays.
const leaf = -1

// Forest is a random forest classifier exported as flat per-tree arrays.
// Prediction averages the class distribution of the reached leaves and
// takes the most probable class.
type Forest struct {
	classes []domain.Label
	trees   []tree
}

type tree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	value     [][]float64
}

type forestFile struct {
	NFeatures    int        `json:"n_features_in"`
	FeatureNames []string   `json:"feature_names_in"`
	Classes      []int64    `json:"classes"`
	Estimators   []treeFile `json:"estimators"`
}

type treeFile struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// LoadForest reads a forest artifact from a JSON file and validates its shape.
func LoadForest(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forest: %w", err)
	}
	var f forestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse forest %s: %w", path, err)
	}
	return newForest(f)
}

func newForest(f forestFile) (*Forest, error) {
	if f.NFeatures != domain.FeatureCount {
		return nil, fmt.Errorf("forest: fitted on %d features, encoder produces %d", f.NFeatures, domain.FeatureCount)
	}
	if err := checkFeatureNames("forest", f.FeatureNames); err != nil {
		return nil, err
	}
	if len(f.Classes) == 0 {
		return nil, errors.New("forest: no classes")
	}
	if len(f.Estimators) == 0 {
		return nil, errors.New("forest: no estimators")
	}

	classes := make([]domain.Label, len(f.Classes))
	for i, c := range f.Classes {
		l, err := domain.LabelFromClass(c)
		if err != nil {
			return nil, fmt.Errorf("forest: %w", err)
		}
		classes[i] = l
	}

	trees := make([]tree, len(f.Estimators))
	for i, tf := range f.Estimators {
		t, err := newTree(tf, len(classes))
		if err != nil {
			return nil, fmt.Errorf("forest: estimator %d: %w", i, err)
		}
		trees[i] = t
	}

	return &Forest{classes: classes, trees: trees}, nil
}

func newTree(tf treeFile, nClasses int) (tree, error) {
	n := len(tf.ChildrenLeft)
	if n == 0 {
		return tree{}, errors.New("empty tree")
	}
	if len(tf.ChildrenRight) != n || len(tf.Feature) != n || len(tf.Threshold) != n || len(tf.Value) != n {
		return tree{}, errors.New("node arrays differ in length")
	}

	for i := range n {
		l, r := tf.ChildrenLeft[i], tf.ChildrenRight[i]
		if l == leaf || r == leaf {
			if l != r {
				return tree{}, fmt.Errorf("node %d has a single child", i)
			}
			if len(tf.Value[i]) != nClasses {
				return tree{}, fmt.Errorf("leaf %d has %d class counts, want %d", i, len(tf.Value[i]), nClasses)
			}
			continue
		}
		// Children always follow their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return tree{}, fmt.Errorf("node %d has children out of range", i)
		}
		if f := tf.Feature[i]; f < 0 || f >= domain.FeatureCount {
			return tree{}, fmt.Errorf("node %d splits on feature %d", i, f)
		}
	}

	return tree{
		left:      tf.ChildrenLeft,
		right:     tf.ChildrenRight,
		feature:   tf.Feature,
		threshold: tf.Threshold,
		value:     tf.Value,
	}, nil
}

// Classify returns the most probable class for a normalized vector.
// Ties go to the class listed first.
func (f *Forest) Classify(v domain.FeatureVector) (domain.Label, error) {
	proba, err := f.Probabilities(v)
	if err != nil {
		return 0, err
	}
	return f.classes[floats.MaxIdx(proba)], nil
}

// Probabilities returns the mean per-tree class distribution, indexed like
// the artifact's classes.
func (f *Forest) Probabilities(v domain.FeatureVector) ([]float64, error) {
	proba := make([]float64, len(f.classes))
	for i := range f.trees {
		counts := f.trees[i].predict(v)
		total := floats.Sum(counts)
		if total <= 0 {
			return nil, fmt.Errorf("forest: estimator %d reached an empty leaf", i)
		}
		floats.AddScaled(proba, 1/total, counts)
	}
	floats.Scale(1/float64(len(f.trees)), proba)
	return proba, nil
}

func (t *tree) predict(v domain.FeatureVector) []float64 {
	node := 0
	for t.left[node] != leaf {
		if v[t.feature[node]] <= t.threshold[node] {
			node = t.left[node]
		} else {
			node = t.right[node]
		}
	}
	return t.value[node]
}
