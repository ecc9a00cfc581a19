package model

import (
	"fmt"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

// checkFeatureNames compares names declared by an artifact with the encoder's
// column order. Artifacts that declare nothing are accepted as-is.
func checkFeatureNames(source string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	want := domain.FeatureNames()
	if len(names) != len(want) {
		return fmt.Errorf("%s: declares %d features, encoder produces %d", source, len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			return fmt.Errorf("%s: feature %d is %q, encoder produces %q", source, i, names[i], want[i])
		}
	}
	return nil
}
