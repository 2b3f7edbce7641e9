// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/hersafety/locreport/config"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

type rootOptions struct {
	ConfigFile    string
	HTTPTrace     bool
	HTTPBodyTrace bool
	Timeout       time.Duration
}

var rootOpts rootOptions

var rootCmd = &cobra.Command{
	Use:   "locreport",
	Short: "report unsafe locations",
	Long: `
locreport serves the HerSafety location report page: visitors search or pick a
point on a map, describe it, and the report is forwarded to the HerSafety
review service.

The same flow is available headless through the geocode and submit commands.
`,
	SilenceUsage: true,
}

var Version = "dev"

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOpts.ConfigFile, "config", "",
		"YAML configuration file (default: $XDG_CONFIG_HOME/"+config.DefaultConfigFile+")")
	flags.BoolVar(&rootOpts.HTTPTrace, "http-trace", false,
		"trace outbound HTTP requests and responses to stderr")
	flags.BoolVar(&rootOpts.HTTPBodyTrace, "http-body-trace", false,
		"include bodies in the HTTP trace")
	flags.DurationVar(&rootOpts.Timeout, "timeout", 0,
		"timeout of every outbound request (default from configuration)")
}

// loadOptions reads the configuration and applies the flags the user set.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load(rootOpts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("http-trace") {
		opts.HTTPTrace = rootOpts.HTTPTrace
	}

	if flags.Changed("http-body-trace") {
		opts.HTTPBodyTrace = rootOpts.HTTPBodyTrace
	}

	if flags.Changed("timeout") {
		opts.HTTPTimeout = rootOpts.Timeout
	}

	return opts, opts.Validate()
}

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
