// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hersafety/locreport/server"
	"github.com/spf13/cobra"
)

var serveOpts struct {
	Listen      string
	Geocoder    string
	CORSOrigins []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the location report web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("listen") {
			opts.Listen = serveOpts.Listen
		}

		if flags.Changed("geocoder") {
			opts.Geocoder = serveOpts.Geocoder
		}

		if flags.Changed("cors-origin") {
			opts.CORSOrigins = serveOpts.CORSOrigins
		}

		if err := opts.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := newHTTPClient(opts)

		geocoder, err := newGeocoder(ctx, opts, client)
		if err != nil {
			return err
		}

		submitter := newSubmitter(opts, client)

		log.Printf("Geocoding with %s, reports go to %s", opts.Geocoder, submitter.Endpoint())

		return server.NewServer(geocoder, submitter, server.Options{
			Listen:      opts.Listen,
			SessionTTL:  opts.SessionTTL,
			CORSOrigins: opts.CORSOrigins,
		}).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.StringVarP(&serveOpts.Listen, "listen", "l", "", "address to listen on (default from configuration)")
	flags.StringVar(&serveOpts.Geocoder, "geocoder", "", "geocoding provider: nominatim or google")
	flags.StringSliceVar(&serveOpts.CORSOrigins, "cors-origin", nil, "origin allowed to call the JSON API, repeatable")
}
