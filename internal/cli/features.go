package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Print the encoded feature order the model artifacts must match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, name := range domain.FeatureNames() {
				if _, err := fmt.Fprintf(out, "%2d %s\n", i, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
