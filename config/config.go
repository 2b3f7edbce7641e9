// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the service options from a YAML file, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/hersafety/locreport/geocoding"
	"github.com/hersafety/locreport/submission"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Geocoder providers.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// DefaultConfigFile is looked up under the XDG config directories.
const DefaultConfigFile = "locreport/config.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOCREPORT_"

// ErrConfigNotFound is returned when an explicitly requested file is missing.
var ErrConfigNotFound = errors.New("configuration file not found")

// Options configures the service and the CLI.
type Options struct {
	// Listen is the address the web server binds to.
	Listen string `yaml:"listen"`

	// Geocoder selects the provider, nominatim or google.
	Geocoder string `yaml:"geocoder"`

	// NominatimURL is the Nominatim search endpoint.
	NominatimURL string `yaml:"nominatim_url"`

	// Country scopes free-text searches.
	Country string `yaml:"country"`

	// UserAgent identifies us to the geocoding service.
	UserAgent string `yaml:"user_agent"`

	// GoogleAPIKey enables the google geocoder. When empty it is looked up
	// through Application Default Credentials.
	GoogleAPIKey    string `yaml:"google_maps_api_key"`
	GoogleProjectID string `yaml:"google_project_id"`
	GoogleKeyName   string `yaml:"google_key_name"`
	GoogleRegion    string `yaml:"google_region"`

	// SubmitURL receives the reports.
	SubmitURL string `yaml:"submit_url"`

	// HTTPTimeout bounds every outbound request. Zero disables it.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// SessionTTL is how long an idle report page keeps its state.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// CORSOrigins may call the JSON API from another origin.
	CORSOrigins []string `yaml:"cors_origins"`

	// Enables light tracing of outbound HTTP requests and responses
	HTTPTrace bool `yaml:"http_trace"`

	// Enables full HTTP body tracing
	HTTPBodyTrace bool `yaml:"http_body_trace"`
}

// Default returns the built-in options.
func Default() *Options {
	return &Options{
		Listen:        "localhost:8080",
		Geocoder:      GeocoderNominatim,
		NominatimURL:  geocoding.DefaultNominatimURL,
		Country:       geocoding.DefaultCountry,
		UserAgent:     "locreport/dev (+https://github.com/hersafety/locreport)",
		GoogleKeyName: "HerSafety Geocoding Key",
		GoogleRegion:  "in",
		SubmitURL:     submission.DefaultEndpoint,
		HTTPTimeout:   30 * time.Second,
		SessionTTL:    30 * time.Minute,
	}
}

// Load builds the options. Sources, from lowest to highest precedence: the
// defaults, the YAML file at path (or the XDG default when path is empty), the
// .env file in the working directory and the process environment.
func Load(path string) (*Options, error) {
	opts := Default()

	file, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}

	if file != "" {
		if err := opts.loadFile(file); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := opts.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return opts, opts.Validate()
}

func findConfigFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}

			return "", fmt.Errorf("checking config file: %w", err)
		}

		return path, nil
	}

	found, err := xdg.SearchConfigFile(DefaultConfigFile)
	if err != nil {
		// no default file is fine
		return "", nil
	}

	return found, nil
}

func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return nil
}

type envBinding struct {
	name string
	set  func(o *Options, v string) error
}

func stringVar(field func(o *Options) *string) func(o *Options, v string) error {
	return func(o *Options, v string) error {
		*field(o) = v

		return nil
	}
}

func durationVar(field func(o *Options) *time.Duration) func(o *Options, v string) error {
	return func(o *Options, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}

		*field(o) = d

		return nil
	}
}

func boolVar(field func(o *Options) *bool) func(o *Options, v string) error {
	return func(o *Options, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}

		*field(o) = b

		return nil
	}
}

var envBindings = []envBinding{
	{EnvPrefix + "LISTEN", stringVar(func(o *Options) *string { return &o.Listen })},
	{EnvPrefix + "GEOCODER", stringVar(func(o *Options) *string { return &o.Geocoder })},
	{EnvPrefix + "NOMINATIM_URL", stringVar(func(o *Options) *string { return &o.NominatimURL })},
	{EnvPrefix + "COUNTRY", stringVar(func(o *Options) *string { return &o.Country })},
	{EnvPrefix + "USER_AGENT", stringVar(func(o *Options) *string { return &o.UserAgent })},
	{"GOOGLE_MAPS_API_KEY", stringVar(func(o *Options) *string { return &o.GoogleAPIKey })},
	{EnvPrefix + "GOOGLE_PROJECT_ID", stringVar(func(o *Options) *string { return &o.GoogleProjectID })},
	{EnvPrefix + "SUBMIT_URL", stringVar(func(o *Options) *string { return &o.SubmitURL })},
	{EnvPrefix + "HTTP_TIMEOUT", durationVar(func(o *Options) *time.Duration { return &o.HTTPTimeout })},
	{EnvPrefix + "SESSION_TTL", durationVar(func(o *Options) *time.Duration { return &o.SessionTTL })},
	{EnvPrefix + "HTTP_TRACE", boolVar(func(o *Options) *bool { return &o.HTTPTrace })},
	{EnvPrefix + "CORS_ORIGINS", func(o *Options, v string) error {
		o.CORSOrigins = splitList(v)

		return nil
	}},
}

func (o *Options) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}

		if err := b.set(o, v); err != nil {
			return fmt.Errorf("invalid %s: %w", b.name, err)
		}
	}

	return nil
}

func splitList(v string) []string {
	var out []string

	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

// Validate checks option consistency.
func (o *Options) Validate() error {
	if o.Listen == "" {
		return errors.New("listen address is required")
	}

	switch o.Geocoder {
	case GeocoderNominatim, GeocoderGoogle:
	default:
		return fmt.Errorf("unknown geocoder %q, want %s or %s", o.Geocoder, GeocoderNominatim, GeocoderGoogle)
	}

	if o.SubmitURL == "" {
		return errors.New("submit url is required")
	}

	if o.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %s", o.HTTPTimeout)
	}

	if o.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", o.SessionTTL)
	}

	return nil
}
