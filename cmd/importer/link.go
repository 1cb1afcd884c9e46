package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link",
		Short: "Link auction history to calendar events",
		Long: `Run the linkage resolver once. History rows whose auction name and date
exactly match a calendar event are linked; existing links are never changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()

			linked, err := services.NewLinkageService(e.store, e.log).Resolve(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %d auction history rows\n", linked)
			return nil
		},
	}
}
