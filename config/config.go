// Package config loads process configuration from the environment, with an
// optional .env file underneath.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendCosmic    = "cosmic"
	BackendFirestore = "firestore"
)

type Config struct {
	Addr string `mapstructure:"addr"`

	CMSBackend string `mapstructure:"cms_backend"`

	CosmicBucketSlug string `mapstructure:"cosmic_bucket_slug"`
	CosmicReadKey    string `mapstructure:"cosmic_read_key"`
	// CosmicWriteKey is carried for parity with the bucket settings; the site
	// never writes content.
	CosmicWriteKey string `mapstructure:"cosmic_write_key"`
	CosmicAPIURL   string `mapstructure:"cosmic_api_url"`
	CosmicPageSize int    `mapstructure:"cosmic_page_size"`

	FirestoreProjectID string `mapstructure:"firestore_project_id"`

	ResendAPIKey string `mapstructure:"resend_api_key"`
	ContactFrom  string `mapstructure:"contact_from"`
	ContactTo    string `mapstructure:"contact_to"`

	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	LogAddSource bool   `mapstructure:"log_add_source"`

	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ImageAllowedHosts  []string      `mapstructure:"image_allowed_hosts"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
}

var defaults = map[string]any{
	"addr":                 ":8080",
	"cms_backend":          BackendCosmic,
	"cosmic_api_url":       "https://api.cosmicjs.com/v3",
	"cosmic_page_size":     100,
	"contact_from":         "tony@cosmicjs.com",
	"contact_to":           "tony@cosmicjs.com",
	"log_level":            "INFO",
	"log_format":           "text",
	"log_add_source":       false,
	"cors_allowed_origins": "*",
	"image_allowed_hosts":  "cdn.cosmicjs.com,imgix.cosmicjs.com",
	"http_timeout":         "15s",
}

// Load reads configuration from envFile (skipped when empty or missing) and
// then the process environment, which wins. Keys are the upper-case field
// names, e.g. COSMIC_BUCKET_SLUG.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	for _, k := range []string{
		"cosmic_bucket_slug", "cosmic_read_key", "cosmic_write_key",
		"firestore_project_id", "resend_api_key",
	} {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.ImageAllowedHosts = splitList(cfg.ImageAllowedHosts)
	return cfg, nil
}

// Validate checks that the selected content backend can be reached. The email
// key is deliberately not checked: the contact relay reports it per request.
func (c *Config) Validate() error {
	var problems []string
	switch c.CMSBackend {
	case BackendCosmic:
		if c.CosmicBucketSlug == "" {
			problems = append(problems, "COSMIC_BUCKET_SLUG is required")
		}
		if c.CosmicReadKey == "" {
			problems = append(problems, "COSMIC_READ_KEY is required")
		}
	case BackendFirestore:
		if c.FirestoreProjectID == "" {
			problems = append(problems, "FIRESTORE_PROJECT_ID is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("CMS_BACKEND must be %q or %q, got %q", BackendCosmic, BackendFirestore, c.CMSBackend))
	}
	if c.CosmicPageSize <= 0 {
		problems = append(problems, "COSMIC_PAGE_SIZE must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// splitList accepts both a real list and a single comma separated value, which
// is what an environment variable produces.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
