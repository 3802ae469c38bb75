package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

// FileName is the configuration file looked up by Load.
const FileName = "hdlgen.json"

// Config is the top-level configuration for hdlgen
type Config struct {
	// Language is the output dialect: "VHDL" or "Verilog"
	Language string `json:"language,omitempty"`

	// Vendor selects vendor specific constructs: "altera", "xilinx", "generic"
	Vendor string `json:"vendor,omitempty"`

	// Output is the root of the generated tree (relative to project root if not absolute)
	Output string `json:"output,omitempty"`

	// Clock selects how the board oscillator is divided
	Clock ClockConfig `json:"clock,omitempty"`

	// Naming overrides module name templates per component kind
	Naming NamingConfig `json:"naming,omitempty"`

	// BlackBox locates external HDL sources
	BlackBox BlackBoxConfig `json:"blackBox,omitempty"`

	// Policy contains the checks run over the generated tree
	Policy PolicyConfig `json:"policy,omitempty"`

	// Timing enables the stage timing log
	Timing TimingConfig `json:"timing,omitempty"`

	// MetricsFile receives run metrics in Prometheus text format
	MetricsFile string `json:"metricsFile,omitempty"`

	// Manifest controls the record of generated files
	Manifest ManifestConfig `json:"manifest,omitempty"`
}

// ClockConfig contains tick generator options
type ClockConfig struct {
	// Mode is "raw" (full speed), "static" (divide by Period) or "dynamic"
	Mode string `json:"mode,omitempty"`

	// Period is the static divider
	Period int `json:"period,omitempty"`

	// Frequency of the board oscillator in Hz, used when the board file has none
	Frequency int `json:"frequency,omitempty"`
}

// NamingConfig maps component kinds to module name templates
type NamingConfig struct {
	Templates map[string]string `json:"templates,omitempty"`
}

// BlackBoxConfig lists where external sources are searched
type BlackBoxConfig struct {
	// SearchPaths is a list of glob patterns, ** matches any depth
	SearchPaths []string `json:"searchPaths,omitempty"`

	// Exclude is a list of glob patterns removed from the search
	Exclude []string `json:"exclude,omitempty"`
}

// PolicyConfig contains policy rule configuration
type PolicyConfig struct {
	// Enabled turns the policy pass on
	Enabled *bool `json:"enabled,omitempty"`

	// Rules maps rule names to severity: "off", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`
}

// TimingConfig controls the JSONL stage timing log
type TimingConfig struct {
	Path string `json:"path,omitempty"`
}

// ManifestConfig controls the manifest written next to the output
type ManifestConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Language: "VHDL",
		Vendor:   string(hdl.Generic),
		Output:   "hdl_out",
		Clock: ClockConfig{
			Mode: "raw",
		},
		Naming: NamingConfig{
			Templates: map[string]string{},
		},
		BlackBox: BlackBoxConfig{
			SearchPaths: []string{"*.vhd", "*.v", "**/*.vhd", "**/*.vhdl", "**/*.v", "**/*.sv"},
			Exclude:     []string{},
		},
		Policy: PolicyConfig{
			Enabled: boolPtr(true),
			Rules:   map[string]string{},
		},
		Manifest: ManifestConfig{
			Enabled: boolPtr(true),
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./hdlgen.json (current working directory)
//  2. ./.hdlgen.json (current working directory)
//  3. <rootPath>/hdlgen.json (if different from cwd)
//  4. ~/.config/hdlgen/config.json
//
// Returns DefaultConfig if no config file is found
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, "."+FileName),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, FileName),
				filepath.Join(rootPath, "."+FileName),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "hdlgen", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.Vendor == "" {
		c.Vendor = def.Vendor
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Clock.Mode == "" {
		c.Clock.Mode = def.Clock.Mode
	}
	if c.Naming.Templates == nil {
		c.Naming.Templates = make(map[string]string)
	}
	if c.BlackBox.SearchPaths == nil {
		c.BlackBox.SearchPaths = def.BlackBox.SearchPaths
	}
	if c.Policy.Rules == nil {
		c.Policy.Rules = make(map[string]string)
	}
	if c.Policy.Enabled == nil {
		c.Policy.Enabled = boolPtr(true)
	}
	if c.Manifest.Enabled == nil {
		c.Manifest.Enabled = boolPtr(true)
	}
}

// Validate checks the enumerated fields
func (c *Config) Validate() error {
	if _, err := hdl.ParseLanguage(c.Language); err != nil {
		return err
	}
	if _, err := hdl.ParseVendor(c.Vendor); err != nil {
		return err
	}
	switch strings.ToLower(c.Clock.Mode) {
	case "raw", "dynamic":
	case "static":
		if c.Clock.Period < 1 {
			return fmt.Errorf("clock mode static needs a period of at least 1, got %d", c.Clock.Period)
		}
	default:
		return fmt.Errorf("unknown clock mode %q", c.Clock.Mode)
	}
	for kind, sev := range c.Policy.Rules {
		switch sev {
		case "off", "warning", "error":
		default:
			return fmt.Errorf("policy rule %s: unknown severity %q", kind, sev)
		}
	}
	for kind := range c.Naming.Templates {
		if !netlist.Kind(kind).Valid() {
			return fmt.Errorf("naming template for unknown component kind %q", kind)
		}
	}
	return nil
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// LanguageOf returns the configured output dialect
func (c *Config) LanguageOf() hdl.Language {
	lang, _ := hdl.ParseLanguage(c.Language)
	return lang
}

// VendorOf returns the configured vendor
func (c *Config) VendorOf() hdl.Vendor {
	v, _ := hdl.ParseVendor(c.Vendor)
	return v
}

// TickPeriod encodes the clock mode: 0 for raw, the divider for static,
// -1 for a divider set at run time
func (c *Config) TickPeriod() int {
	switch strings.ToLower(c.Clock.Mode) {
	case "static":
		return c.Clock.Period
	case "dynamic":
		return -1
	}
	return 0
}

// Templates returns the naming overrides keyed by component kind
func (c *Config) Templates() map[netlist.Kind]string {
	out := make(map[netlist.Kind]string, len(c.Naming.Templates))
	for k, v := range c.Naming.Templates {
		out[netlist.Kind(k)] = v
	}
	return out
}

// OutputDir resolves the output root against the project root
func (c *Config) OutputDir(rootPath string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(rootPath, c.Output)
}

// PolicyEnabled reports whether the policy pass runs
func (c *Config) PolicyEnabled() bool {
	return c.Policy.Enabled == nil || *c.Policy.Enabled
}

// ManifestEnabled reports whether the manifest is written
func (c *Config) ManifestEnabled() bool {
	return c.Manifest.Enabled == nil || *c.Manifest.Enabled
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}
