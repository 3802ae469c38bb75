package board

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

const sample = `
name: DE0
vendor: altera
clock:
  pin: PIN_G21
  frequency: 50000000
mappings:
  - path: A
    bits:
      - pin: PIN_J6
  - path: Q
    bits:
      - pin: PIN_J1
        inverted: true
      - open: true
  - path: sub/button5
    bits:
      - constant: 1
`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if b.Name != "DE0" || b.VendorOf() != hdl.Altera || b.Clock.Frequency != 50000000 {
		t.Fatalf("unexpected board header: %+v", b)
	}
	if got := strings.Join(b.Paths(), ","); got != "A,Q,sub/button5" {
		t.Errorf("Paths = %s", got)
	}

	tests := []struct {
		path     string
		bit      int
		kind     BitKind
		inverted bool
		value    int
	}{
		{"A", 0, PinBit, false, 0},
		{"Q", 0, PinBit, true, 0},
		{"Q", 1, OpenBit, false, 0},
		{"sub/button5", 0, ConstantBit, false, 1},
		{"Q", 2, Unmapped, false, 0},
		{"missing", 0, Unmapped, false, 0},
	}
	for _, tt := range tests {
		got := b.BitAt(tt.path, tt.bit)
		if got.Kind() != tt.kind || got.Inverted != tt.inverted || got.Value() != tt.value {
			t.Errorf("BitAt(%s, %d) = %+v", tt.path, tt.bit, got)
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"two kinds", "mappings:\n  - path: A\n    bits:\n      - pin: X1\n        open: true\n", "exactly one"},
		{"no kind", "mappings:\n  - path: A\n    bits:\n      - inverted: true\n", "exactly one"},
		{"bad constant", "mappings:\n  - path: A\n    bits:\n      - constant: 2\n", "0 or 1"},
		{"pin reuse", "mappings:\n  - path: A\n    bits:\n      - pin: X1\n  - path: B\n    bits:\n      - pin: x1\n", "used by A bit 0"},
		{"clock pin reuse", "clock:\n  pin: X1\nmappings:\n  - path: A\n    bits:\n      - pin: X1\n", "used by clock"},
		{"duplicate path", "mappings:\n  - path: A\n  - path: A\n", "mapped twice"},
		{"vendor", "vendor: lattice\n", "unknown FPGA vendor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := b.Lookup("Q"); !ok {
		t.Error("expected Q to be mapped")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
