package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `{"language": "verilog", "clock": {"mode": "static", "period": 3}, "naming": {"templates": {"rom": "ROM_${LABEL}"}}}`))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LanguageOf() != hdl.Verilog || cfg.VendorOf() != hdl.Generic {
		t.Errorf("language/vendor = %v/%v", cfg.LanguageOf(), cfg.VendorOf())
	}
	if cfg.Output != "hdl_out" || !cfg.PolicyEnabled() || !cfg.ManifestEnabled() {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.TickPeriod() != 3 {
		t.Errorf("TickPeriod = %d", cfg.TickPeriod())
	}
	if got := cfg.Templates()[netlist.KindROM]; got != "ROM_${LABEL}" {
		t.Errorf("template = %q", got)
	}
}

func TestTickPeriod(t *testing.T) {
	tests := []struct {
		mode   string
		period int
		want   int
	}{
		{"raw", 5, 0},
		{"static", 1, 1},
		{"dynamic", 0, -1},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Clock = ClockConfig{Mode: tt.mode, Period: tt.period}
		if got := cfg.TickPeriod(); got != tt.want {
			t.Errorf("mode %s period %d: TickPeriod = %d, want %d", tt.mode, tt.period, got, tt.want)
		}
	}
}

func TestLoadFileRejects(t *testing.T) {
	tests := []struct {
		name, json, want string
	}{
		{"language", `{"language": "chisel"}`, "unknown HDL language"},
		{"vendor", `{"vendor": "lattice"}`, "unknown FPGA vendor"},
		{"mode", `{"clock": {"mode": "turbo"}}`, "unknown clock mode"},
		{"period", `{"clock": {"mode": "static"}}`, "period of at least 1"},
		{"severity", `{"policy": {"rules": {"unknown_module": "fatal"}}}`, "unknown severity"},
		{"template", `{"naming": {"templates": {"flipflop": "X"}}}`, "unknown component kind"},
		{"syntax", `{`, "parsing config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Policy.Rules["one_module_per_file"] = "off"
	if err := cfg.Save(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.IsRuleEnabled("one_module_per_file") {
		t.Error("expected rule to be disabled")
	}
	if loaded.GetRuleSeverity("unknown_module", "error") != "error" {
		t.Error("expected default severity")
	}
	if got := loaded.OutputDir(dir); got != filepath.Join(dir, "hdl_out") {
		t.Errorf("OutputDir = %s", got)
	}
}
