// Package config loads the typica configuration file.
//
//	format: text            # text | json
//	log_level: info         # debug | info | warn | error
//	compile:
//	  dialect: generic      # generic | opt | mongo | sql
//	  flavor: sqlite        # sqlite | postgres
//	  table: records
//	  tie_breaker: id
//	  active_only: false
//	  hide_deleted: false
//	connection:
//	  strict: false
//	  allow: [sql, document]
//	  host: localhost
//	  port: 5432
//	  username: app
//	  password: secret
//	  database: app
//
// Unknown keys are rejected. Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typica/internal/conn"
	"github.com/roach88/typica/internal/querysql"
)

// EnvPath names the environment variable consulted when no path is given.
const EnvPath = "TYPICA_CONFIG"

// Dialects are the document shapes the compile command can emit.
var Dialects = []string{"generic", "opt", "mongo", "sql"}

// Config is the decoded configuration file.
type Config struct {
	Format     string     `yaml:"format"`
	LogLevel   string     `yaml:"log_level"`
	Compile    Compile    `yaml:"compile"`
	Connection Connection `yaml:"connection"`
}

// Compile holds defaults for the compile command.
type Compile struct {
	Dialect     string `yaml:"dialect"`
	Flavor      string `yaml:"flavor"`
	Table       string `yaml:"table"`
	TieBreaker  string `yaml:"tie_breaker"`
	ActiveOnly  bool   `yaml:"active_only"`
	HideDeleted bool   `yaml:"hide_deleted"`
}

// Connection holds defaults for resolve and format. The embedded fields
// are the fallbacks Resolve applies.
type Connection struct {
	conn.Fields `yaml:",inline"`
	Strict      bool     `yaml:"strict"`
	Allow       []string `yaml:"allow"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Format:   "text",
		LogLevel: "info",
		Compile: Compile{
			Dialect:    "generic",
			Flavor:     querysql.SQLite.String(),
			Table:      "records",
			TieBreaker: querysql.DefaultTieBreaker,
		},
	}
}

// Load reads the file at path, or at $TYPICA_CONFIG when path is empty.
// With neither set, Default is returned. A path named explicitly must exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	var problems []string

	if c.Format != "text" && c.Format != "json" {
		problems = append(problems, fmt.Sprintf("format %q must be text or json", c.Format))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if !slices.Contains(Dialects, c.Compile.Dialect) {
		problems = append(problems, fmt.Sprintf("compile.dialect %q must be one of %v", c.Compile.Dialect, Dialects))
	}
	if _, err := querysql.ParseFlavor(c.Compile.Flavor); err != nil {
		problems = append(problems, "compile.flavor: "+err.Error())
	}
	if _, err := c.Connection.Allowlist(); err != nil {
		problems = append(problems, "connection.allow: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Allowlist parses Allow into scheme families.
func (c Connection) Allowlist() (conn.Allowlist, error) {
	var allow conn.Allowlist
	for _, name := range c.Allow {
		f, err := conn.ParseFamily(name)
		if err != nil {
			return nil, err
		}
		allow = append(allow, f)
	}
	return allow, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level %q must be debug, info, warn or error", s)
	}
	return level, nil
}
