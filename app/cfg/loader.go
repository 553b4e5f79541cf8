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
	DBPath string `long:"db-path" env:"DB_PATH" default:"./kynews.db" description:"Path to the SQLite database file"`

	// Application configuration
	FeedsFile       string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file listing feed sources to register"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	IngestInterval  int    `long:"ingest-interval" env:"INGEST_INTERVAL" default:"15" description:"Minutes between scheduled ingestion runs"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Timeout in seconds for feed and article fetches"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for operational endpoints (optional)"`
	ServingCacheTTL int    `long:"serving-cache-ttl" env:"SERVING_CACHE_TTL" default:"60" description:"Seconds to cache ranked item responses"`
	ServingPageSize int    `long:"serving-page-size" env:"SERVING_PAGE_SIZE" default:"50" description:"Default page size for ranked item responses"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"KYNews/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
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
		DBPath:          raw.DBPath,
		FeedsFile:       raw.FeedsFile,
		Port:            raw.Port,
		IngestInterval:  raw.IngestInterval,
		FetchTimeout:    raw.FetchTimeout,
		APIAccessKey:    raw.APIAccessKey,
		ServingCacheTTL: raw.ServingCacheTTL,
		ServingPageSize: raw.ServingPageSize,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
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

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
