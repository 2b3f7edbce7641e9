// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/hersafety/locreport/geocoding"
	"github.com/spf13/cobra"
)

var geocodeOpts struct {
	Geocoder string
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <query...>",
	Short: "Resolve a free-text place the way the report page search does",
	Long: `Resolves the query, scoped to the configured country, and prints the first
candidate.

$ locreport geocode Shaniwar Wada, Pune
18.5194580000000, 73.8553070000000	nominatim	Shaniwar Wada, Pune, Maharashtra, India
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("geocoder") {
			opts.Geocoder = geocodeOpts.Geocoder
		}

		geocoder, err := newGeocoder(cmd.Context(), opts, newHTTPClient(opts))
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")

		result, err := geocoder.Geocode(cmd.Context(), query)
		if geocoding.IsNotFoundError(err) {
			return fmt.Errorf("%q: location not found", query)
		}

		if err != nil {
			return fmt.Errorf("geocoding %q: %w", query, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", result.Point.Format(), result.Provider, result.DisplayName)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)

	geocodeCmd.Flags().StringVar(&geocodeOpts.Geocoder, "geocoder", "", "geocoding provider: nominatim or google")
}
