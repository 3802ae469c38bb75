package validator

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/board"
	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

const validDesign = `{
  "name": "d", "top": "main",
  "clockTrees": [{"id": 0, "highTicks": 2, "lowTicks": 1, "phase": 0}],
  "circuits": [
    {"name": "main", "nets": [{"id": 0, "width": 1, "clockTree": 0}], "components": [
      {"id": 1, "kind": "clock", "ends": [{"name": "Output", "output": true, "points": [{"net": 0, "bit": 0}]}]},
      {"id": 2, "kind": "subcircuit", "circuit": "sub", "ends": [{"name": "x", "points": [{"net": -1, "bit": 0}]}]},
      {"id": 3, "kind": "rom", "attrs": {"label": "boot", "addrBits": 4}}
    ]},
    {"name": "sub", "blackBox": {"file": "sub.vhd", "language": "VHDL"}}
  ]
}`

func mustDesign(t *testing.T, text string) *netlist.Design {
	t.Helper()
	d, err := netlist.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestDesignValidator(t *testing.T) {
	v, err := NewDesignValidator()
	if err != nil {
		t.Fatalf("NewDesignValidator: %v", err)
	}
	if err := v.Validate(mustDesign(t, validDesign)); err != nil {
		t.Fatalf("valid design rejected: %v", err)
	}
	if err := v.ValidateJSON([]byte(validDesign)); err != nil {
		t.Fatalf("valid design JSON rejected: %v", err)
	}

	tests := []struct {
		name string
		from string
		to   string
	}{
		{"subcircuit without circuit", `"circuit": "sub", `, ``},
		{"zero ticks", `"highTicks": 2`, `"highTicks": 0`},
		{"unknown field", `"phase": 0`, `"phase": 0, "duty": 50`},
		{"bad language", `"language": "VHDL"`, `"language": "chisel"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := strings.Replace(validDesign, tt.from, tt.to, 1)
			if err := v.ValidateJSON([]byte(bad)); err == nil {
				t.Fatalf("expected %s to be rejected", tt.name)
			}
		})
	}
}

func TestDesignValidatorListsEveryError(t *testing.T) {
	v, err := NewDesignValidator()
	if err != nil {
		t.Fatal(err)
	}
	bad := struct {
		Name     string `json:"name"`
		Top      string `json:"top"`
		Circuits []any  `json:"circuits"`
	}{Name: "x", Top: "", Circuits: []any{}}
	if errs := v.ValidationErrors(bad); len(errs) < 2 {
		t.Fatalf("expected errors for top and circuits, got %v", errs)
	}
	if errs := v.ValidationErrors(mustDesign(t, validDesign)); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestBoardValidator(t *testing.T) {
	v, err := NewBoardValidator()
	if err != nil {
		t.Fatalf("NewBoardValidator: %v", err)
	}
	b, err := board.Parse([]byte("name: x\nvendor: xilinx\nmappings:\n  - path: A\n    bits:\n      - pin: W5\n        inverted: true\n      - constant: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(b); err != nil {
		t.Fatalf("valid board rejected: %v", err)
	}
	if err := v.Validate(&board.Board{}); err != nil {
		t.Fatalf("empty board rejected: %v", err)
	}
	if err := v.ValidateJSON([]byte(`{"vendor": "lattice"}`)); err == nil {
		t.Fatal("expected unknown vendor to be rejected")
	}
}

func TestFactsValidator(t *testing.T) {
	v, err := NewFactsValidator()
	if err != nil {
		t.Fatalf("NewFactsValidator: %v", err)
	}
	src := "entity AND_GATE is\n   port (\n      Input_1 : in  std_logic;\n      Result  : out std_logic\n   );\nend entity AND_GATE;\n"
	ff := extractor.ExtractText("vhdl/gates/AND_GATE_entity.vhd", hdl.VHDL, []byte(src))
	tables := facts.BuildTables([]extractor.FileFacts{ff}, []facts.FileRow{
		{Path: "vhdl/gates/AND_GATE_entity.vhd", Language: "VHDL", Role: "entity", Hash: "00"},
	})
	if err := v.Validate(tables); err != nil {
		t.Fatalf("valid tables rejected: %v", err)
	}
	tables.Files[0].Role = "scratch"
	if err := v.Validate(tables); err == nil {
		t.Fatal("expected unknown file role to be rejected")
	}
}

func TestReportValidator(t *testing.T) {
	v, err := NewReportValidator()
	if err != nil {
		t.Fatalf("NewReportValidator: %v", err)
	}
	sink := report.NewSink(nil)
	sink.Warn("main", "main", "output pin Q: bit 1 not driven")
	if err := v.Validate(sink.Result()); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
	sink.Fatal("main", report.Fatalf("main", "generated body is empty"))
	r := sink.Result()
	if err := v.Validate(r); err != nil {
		t.Fatalf("failed report rejected: %v", err)
	}
	r.Success = true
	if err := v.Validate(r); err == nil {
		t.Fatal("expected success with fatal messages to be rejected")
	}
}

func TestEverySchemaLoads(t *testing.T) {
	for name, newValidator := range map[string]func() (*Validator, error){
		"design": NewDesignValidator,
		"board":  NewBoardValidator,
		"facts":  NewFactsValidator,
		"report": NewReportValidator,
	} {
		if _, err := newValidator(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
