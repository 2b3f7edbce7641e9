// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hersafety/locreport/form"
	"github.com/hersafety/locreport/identity"
	"github.com/spf13/cobra"
)

var submitOpts struct {
	Description string
	Lat         float64
	Lng         float64
	Search      string
	Page        string
	UserID      string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a location report without the web page",
	Long: `Runs the report page flow headless: the location comes from --lat/--lng or
from a --search query, and the report is posted to the configured endpoint.

$ locreport submit --page cli --lat 18.52 --lng 73.85 --description "No streetlights"
Report submitted successfully.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		params := url.Values{}

		if flags.Changed("page") {
			params.Set("page", submitOpts.Page)
		}

		if flags.Changed("lat") || flags.Changed("lng") {
			params.Set("lat", strconv.FormatFloat(submitOpts.Lat, 'f', -1, 64))
			params.Set("lng", strconv.FormatFloat(submitOpts.Lng, 'f', -1, 64))
		}

		client := newHTTPClient(opts)

		geocoder, err := newGeocoder(cmd.Context(), opts, client)
		if err != nil {
			return err
		}

		deps := form.Deps{
			Geocoder:  geocoder,
			Submitter: newSubmitter(opts, client),
		}
		if submitOpts.UserID != "" {
			deps.Identity = identity.Static(submitOpts.UserID)
		}

		ctrl := form.Mount(params, deps)
		defer ctrl.Close()

		if submitOpts.Search != "" {
			ctrl.SetSearchText(submitOpts.Search)
			ctrl.Search(cmd.Context())

			if msg := ctrl.Snapshot().SearchError; msg != "" {
				return errors.New(msg)
			}
		}

		ctrl.SetDescription(submitOpts.Description)
		ctrl.Submit(cmd.Context())

		msg := ctrl.Snapshot().SubmitMessage
		if msg != form.MsgSubmitted {
			return errors.New(msg)
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	flags := submitCmd.Flags()
	flags.StringVarP(&submitOpts.Description, "description", "d", "", "what is wrong with the location")
	flags.Float64Var(&submitOpts.Lat, "lat", 0, "latitude of the location")
	flags.Float64Var(&submitOpts.Lng, "lng", 0, "longitude of the location")
	flags.StringVarP(&submitOpts.Search, "search", "s", "", "resolve the location from a place name")
	flags.StringVarP(&submitOpts.Page, "page", "p", "", "page source recorded with the report")
	flags.StringVarP(&submitOpts.UserID, "user", "u", "", "reporter id (default anonymous)")
	submitCmd.MarkFlagsRequiredTogether("lat", "lng")
}
