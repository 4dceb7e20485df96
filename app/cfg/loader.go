package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/autoinstapost.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Photo folder source (Google Drive)
	DriveBaseUrl     string `long:"drive-base-url" env:"DRIVE_BASE_URL" default:"https://www.googleapis.com/drive/v3" description:"Google Drive API base URL"`
	DriveAccessToken string `long:"drive-token" env:"DRIVE_ACCESS_TOKEN" description:"OAuth access token for the Drive API"`

	// Caption service (Anthropic)
	AnthropicBaseUrl string `long:"anthropic-base-url" env:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com" description:"Anthropic API base URL"`
	AnthropicAPIKey  string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key for caption generation"`
	CaptionModel     string `long:"caption-model" env:"CAPTION_MODEL" default:"claude-sonnet-4-20250514" description:"Model used for caption generation"`

	// Publishing target (Instagram Graph API)
	GraphBaseUrl         string `long:"graph-base-url" env:"GRAPH_BASE_URL" default:"https://graph.facebook.com/v21.0" description:"Facebook Graph API base URL"`
	InstagramAccountID   string `long:"instagram-account-id" env:"INSTAGRAM_ACCOUNT_ID" description:"Instagram business account ID"`
	InstagramAccessToken string `long:"instagram-token" env:"INSTAGRAM_ACCESS_TOKEN" description:"Long-lived Instagram access token"`
	PublicBaseUrl        string `long:"public-base-url" env:"PUBLIC_BASE_URL" description:"Public base URL Instagram uses to fetch images"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"AutoInstaPost/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for schedule evaluation (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		Port:                 raw.Port,
		SchedulerInterval:    raw.SchedulerInterval,
		APIAccessKey:         raw.APIAccessKey,
		DriveBaseUrl:         raw.DriveBaseUrl,
		DriveAccessToken:     raw.DriveAccessToken,
		AnthropicBaseUrl:     raw.AnthropicBaseUrl,
		AnthropicAPIKey:      raw.AnthropicAPIKey,
		CaptionModel:         raw.CaptionModel,
		GraphBaseUrl:         raw.GraphBaseUrl,
		InstagramAccountID:   raw.InstagramAccountID,
		InstagramAccessToken: raw.InstagramAccessToken,
		PublicBaseUrl:        raw.PublicBaseUrl,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Location returns the schedule evaluation timezone. Falls back to time.Local
// when the configured zone name does not resolve.
func (c *Cfg) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
