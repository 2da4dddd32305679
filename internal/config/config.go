package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StreamSpec describes one entry of the stream catalog.
type StreamSpec struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Target float64 `yaml:"target"`
}

// Key returns the strategies map key for the stream, e.g. "crypto_arbitrage".
func (s StreamSpec) Key() string {
	return strings.ReplaceAll(strings.ToLower(s.Name), " ", "_")
}

// Config holds all application configuration.
type Config struct {
	Strategies map[string]bool `yaml:"strategies"`
	Targets    struct {
		Daily   float64 `yaml:"daily"`
		Monthly float64 `yaml:"monthly"`
		Yearly  float64 `yaml:"yearly"`
	} `yaml:"targets"`
	Automation struct {
		AutoReinvest       bool `yaml:"auto_reinvest"`
		RiskManagement     bool `yaml:"risk_management"`
		Diversification    bool `yaml:"diversification"`
		PauseAfterFailures int  `yaml:"pause_after_failures"`
	} `yaml:"automation"`
	Streams  []StreamSpec `yaml:"streams"`
	Schedule struct {
		Cadence       string        `yaml:"cadence"`
		WorkerTimeout time.Duration `yaml:"worker_timeout"`
		SnapshotCron  string        `yaml:"snapshot_cron"`
	} `yaml:"schedule"`
	Report struct {
		Path string `yaml:"path"`
	} `yaml:"report"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Monitor struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"monitor"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	// missing lists required top-level sections absent from a parsed document.
	missing []string
}

// requiredSections must appear in every supplied config document.
var requiredSections = []string{"strategies", "targets"}

// strictBools are the mappings whose values must be literal true/false.
// yaml.v3 would otherwise turn strings like "no" or "off" into false.
var strictBools = map[string][]string{
	"strategies": nil,
	"automation": {"auto_reinvest", "risk_management", "diversification"},
}

// DefaultStreams is the built-in catalog used when the config names none.
func DefaultStreams() []StreamSpec {
	return []StreamSpec{
		{Name: "API Monetization", Type: "passive", Target: 1000},
		{Name: "Crypto Arbitrage", Type: "active", Target: 800},
		{Name: "Content Generation", Type: "passive", Target: 600},
		{Name: "Bounty Hunting", Type: "active", Target: 400},
		{Name: "Affiliate Marketing", Type: "passive", Target: 200},
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Strategies: map[string]bool{
			"api_monetization":    true,
			"crypto_arbitrage":    true,
			"content_generation":  true,
			"bounty_hunting":      true,
			"affiliate_marketing": true,
		},
	}
	cfg.Targets.Daily = 100
	cfg.Targets.Monthly = 3000
	cfg.Targets.Yearly = 36000
	cfg.Automation.AutoReinvest = true
	cfg.Automation.RiskManagement = true
	cfg.Automation.Diversification = true
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML (or JSON) file, then applies environment variable overrides.
// An empty path or a missing file yields the built-in defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, &Error{Field: path, Msg: "read config", Err: err}
		}
		if len(data) > 0 {
			cfg, err = Parse(data)
			if err != nil {
				return nil, err
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("WEALTH_REPORT_PATH"); v != "" {
		cfg.Report.Path = v
	}
	if v := os.Getenv("WEALTH_CADENCE"); v != "" {
		cfg.Schedule.Cadence = v
	}
	if v := os.Getenv("WEALTH_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("WEALTH_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("WEALTH_MONITOR_ADDR"); v != "" {
		cfg.Monitor.ListenAddr = v
	}
	if v := os.Getenv("WEALTH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Parse decodes a config document. Unknown keys and non-boolean flags are
// rejected; absent required sections are reported by Validate.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Msg: "parse config", Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Msg: "parse config", Err: err}
	}
	sections := topLevel(&doc)
	for _, name := range requiredSections {
		if _, ok := sections[name]; !ok {
			cfg.missing = append(cfg.missing, name)
		}
	}
	for name, keys := range strictBools {
		if err := checkBools(name, sections[name], keys); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func topLevel(doc *yaml.Node) map[string]*yaml.Node {
	out := map[string]*yaml.Node{}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return out
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return out
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		out[root.Content[i].Value] = root.Content[i+1]
	}
	return out
}

// checkBools verifies that keys (all keys when nil) of the mapping hold booleans.
func checkBools(section string, node *yaml.Node, keys []string) error {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if keys != nil && !contains(keys, key) {
			continue
		}
		if val.ShortTag() != "!!bool" {
			return &Error{Field: section + "." + key, Msg: fmt.Sprintf("must be true or false, got %q", val.Value)}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Config) applyDefaults() {
	if c.Strategies == nil {
		c.Strategies = map[string]bool{}
	}
	if len(c.Streams) == 0 {
		c.Streams = DefaultStreams()
	}
	if c.Schedule.Cadence == "" {
		c.Schedule.Cadence = "@every 1h"
	}
	if c.Schedule.WorkerTimeout == 0 {
		c.Schedule.WorkerTimeout = 5 * time.Minute
	}
	if c.Report.Path == "" {
		c.Report.Path = "wealth_report.json"
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		c.Database.DSN = "data/wealth.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Enabled reports whether the stream should be registered.
// A stream is enabled unless its strategies flag is explicitly false.
func (c *Config) Enabled(s StreamSpec) bool {
	on, ok := c.Strategies[s.Key()]
	return !ok || on
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.missing) > 0 {
		return &Error{Field: c.missing[0], Msg: "is required"}
	}
	if c.Targets.Daily < 0 || c.Targets.Monthly < 0 || c.Targets.Yearly < 0 {
		return &Error{Field: "targets", Msg: "must not be negative"}
	}
	if c.Automation.PauseAfterFailures < 0 {
		return &Error{Field: "automation.pause_after_failures", Msg: "must not be negative"}
	}
	if c.Schedule.WorkerTimeout < 0 {
		return &Error{Field: "schedule.worker_timeout", Msg: "must not be negative"}
	}
	switch c.Database.Driver {
	case "", "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return &Error{Field: "database.dsn", Msg: "required for postgres"}
		}
	default:
		return &Error{Field: "database.driver", Msg: fmt.Sprintf("unsupported driver %q", c.Database.Driver)}
	}
	if _, err := ParseSchedule("schedule.cadence", c.Schedule.Cadence); err != nil {
		return err
	}
	if c.Schedule.SnapshotCron != "" {
		if _, err := ParseSchedule("schedule.snapshot_cron", c.Schedule.SnapshotCron); err != nil {
			return err
		}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return &Error{Field: "log.format", Msg: fmt.Sprintf("unsupported format %q", c.Log.Format)}
	}

	seen := make(map[string]bool, len(c.Streams))
	for i, s := range c.Streams {
		field := fmt.Sprintf("streams[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			return &Error{Field: field + ".name", Msg: "is required"}
		}
		if s.Type != "passive" && s.Type != "active" {
			return &Error{Field: field + ".type", Msg: fmt.Sprintf("must be passive or active, got %q", s.Type)}
		}
		if s.Target < 0 {
			return &Error{Field: field + ".target", Msg: "must not be negative"}
		}
		if seen[s.Name] {
			return &Error{Field: field + ".name", Msg: fmt.Sprintf("duplicate stream %q", s.Name)}
		}
		seen[s.Name] = true
	}
	return nil
}
