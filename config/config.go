// Package config resolves the flags and optional YAML manifest that
// configure the alier command, in the teacher's flag.FlagSet style
// (cmd/skoap_main.go.ref) generalised from a reverse-proxy's
// auth/routing flags to this framework's router.Options and listen
// address.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suredesigns/alier-node/router"
)

const (
	addressFlag             = "address"
	defaultAddress          = ":8080"
	manifestFlag            = "config"
	trailingSlashFlag       = "trailing-slash"
	postOverrideFlag        = "allow-post-override"
	queryAsJsonFlag         = "query-as-json"
	maxBodySizeFlag         = "max-body-size"
	defaultMaxBodySize      = 10 << 20
	verboseFlag             = "v"
	accessLogJSONFlag       = "access-log-json"
	accessLogStripQueryFlag = "access-log-strip-query"
)

// Config is the fully resolved configuration for cmd/alier, combining
// flag defaults, an optional YAML manifest, and command-line
// overrides, in that precedence order (lowest to highest).
type Config struct {
	Address             string          `yaml:"address"`
	TrailingSlashPolicy string          `yaml:"trailingSlash"`
	AllowPostOverride   bool            `yaml:"allowPostOverride"`
	QueryAsJSON         bool            `yaml:"queryAsJson"`
	MaxBodySize         int64           `yaml:"maxBodySize"`
	Verbose             bool            `yaml:"verbose"`
	AccessLogJSON       bool            `yaml:"accessLogJson"`
	AccessLogStripQuery bool            `yaml:"accessLogStripQuery"`
}

// manifest is the subset of Config that a YAML file may set; it uses
// pointer fields so an absent key does not clobber a flag-supplied
// value.
type manifest struct {
	Address             *string `yaml:"address"`
	TrailingSlashPolicy *string `yaml:"trailingSlash"`
	AllowPostOverride   *bool   `yaml:"allowPostOverride"`
	QueryAsJSON         *bool   `yaml:"queryAsJson"`
	MaxBodySize         *int64  `yaml:"maxBodySize"`
	Verbose             *bool   `yaml:"verbose"`
	AccessLogJSON       *bool   `yaml:"accessLogJson"`
	AccessLogStripQuery *bool   `yaml:"accessLogStripQuery"`
}

// Default mirrors router.DefaultOptions and a conventional listen
// address.
func Default() Config {
	return Config{
		Address:             defaultAddress,
		TrailingSlashPolicy: "remove",
		AllowPostOverride:   false,
		QueryAsJSON:         true,
		MaxBodySize:         defaultMaxBodySize,
	}
}

// Parse resolves a Config from args (typically os.Args[1:]), reading
// an optional -config manifest file before applying flag overrides, as
// the teacher's single init() does for its own flag set.
func Parse(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("alier", flag.ContinueOnError)

	address := fs.String(addressFlag, cfg.Address, "network address alier should listen on")
	manifestPath := fs.String(manifestFlag, "", "optional YAML file overriding the flag defaults")
	trailingSlash := fs.String(trailingSlashFlag, cfg.TrailingSlashPolicy, "trailing slash policy: remove, add, or asis")
	postOverride := fs.Bool(postOverrideFlag, cfg.AllowPostOverride, "honor X-HTTP-Method-Override on POST requests")
	queryAsJSON := fs.Bool(queryAsJsonFlag, cfg.QueryAsJSON, "attempt to parse query parameters as JSON values")
	maxBodySize := fs.Int64(maxBodySizeFlag, cfg.MaxBodySize, "maximum accepted request body size in bytes")
	verbose := fs.Bool(verboseFlag, false, "log level: Debug")
	accessLogJSON := fs.Bool(accessLogJSONFlag, false, "emit the access log as JSON instead of combined log format")
	accessLogStripQuery := fs.Bool(accessLogStripQueryFlag, false, "omit query strings from access log entries")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Address = *address
	cfg.TrailingSlashPolicy = *trailingSlash
	cfg.AllowPostOverride = *postOverride
	cfg.QueryAsJSON = *queryAsJSON
	cfg.MaxBodySize = *maxBodySize
	cfg.Verbose = *verbose
	cfg.AccessLogJSON = *accessLogJSON
	cfg.AccessLogStripQuery = *accessLogStripQuery

	if *manifestPath != "" {
		if err := applyManifest(&cfg, *manifestPath, fs); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// applyManifest loads path and overlays its values onto cfg, but only
// for flags the caller did not explicitly pass — an explicit flag
// always wins over the manifest, matching the teacher's flag set being
// the single source of truth once parsed.
func applyManifest(cfg *Config, path string, fs *flag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading manifest %q: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("config: parsing manifest %q: %w", path, err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if m.Address != nil && !explicit[addressFlag] {
		cfg.Address = *m.Address
	}
	if m.TrailingSlashPolicy != nil && !explicit[trailingSlashFlag] {
		cfg.TrailingSlashPolicy = *m.TrailingSlashPolicy
	}
	if m.AllowPostOverride != nil && !explicit[postOverrideFlag] {
		cfg.AllowPostOverride = *m.AllowPostOverride
	}
	if m.QueryAsJSON != nil && !explicit[queryAsJsonFlag] {
		cfg.QueryAsJSON = *m.QueryAsJSON
	}
	if m.MaxBodySize != nil && !explicit[maxBodySizeFlag] {
		cfg.MaxBodySize = *m.MaxBodySize
	}
	if m.Verbose != nil && !explicit[verboseFlag] {
		cfg.Verbose = *m.Verbose
	}
	if m.AccessLogJSON != nil && !explicit[accessLogJSONFlag] {
		cfg.AccessLogJSON = *m.AccessLogJSON
	}
	if m.AccessLogStripQuery != nil && !explicit[accessLogStripQueryFlag] {
		cfg.AccessLogStripQuery = *m.AccessLogStripQuery
	}

	return nil
}

// RouterOptions translates Config into router.Options, defaulting an
// unrecognised TrailingSlashPolicy string to router.TrailingSlashRemove.
func (c Config) RouterOptions() router.Options {
	opts := router.DefaultOptions()
	opts.AllowsPostMethodOverride = c.AllowPostOverride
	opts.ParsesQueryAsJson = c.QueryAsJSON
	opts.MaxBodySize = c.MaxBodySize

	switch c.TrailingSlashPolicy {
	case "asis":
		opts.TrailingSlashPolicy = router.TrailingSlashAsIs
	case "add":
		opts.TrailingSlashPolicy = router.TrailingSlashAdd
	default:
		opts.TrailingSlashPolicy = router.TrailingSlashRemove
	}

	return opts
}
