package facts

import (
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

func TestBuildTablesPopulatesCoreRelations(t *testing.T) {
	facts := []extractor.FileFacts{
		{
			File:     "vhdl/gates/AND_GATE_entity.vhd",
			Language: hdl.VHDL,
			Entities: []extractor.Entity{{
				Name:  "AND_GATE",
				Line:  9,
				Ports: []extractor.Port{{Name: "Result", Direction: "out", Type: "std_logic", Width: 1, Line: 12}},
			}},
			Dependencies: []extractor.Dependency{{Target: "ieee", Kind: "library", Line: 5}},
		},
		{
			File:     "vhdl/circuit/main_behavior.vhd",
			Language: hdl.VHDL,
			Components: []extractor.Component{
				{Name: "AND_GATE", EntityRef: "AND_GATE", Line: 20},
				{Name: "GATES_1", EntityRef: "AND_GATE", Line: 40, IsInstance: true, InModule: "main"},
			},
		},
	}
	files := []FileRow{
		{Path: "vhdl/gates/AND_GATE_entity.vhd", Language: "VHDL", Role: "entity", Hash: "x"},
		{Path: "vhdl/memory/rom.mem", Role: "memory", Hash: "y"},
	}

	tables := BuildTables(facts, files)

	if len(tables.Files) != 3 {
		t.Fatalf("expected 3 file rows, got %+v", tables.Files)
	}
	if tables.Files[0].Path != "vhdl/circuit/main_behavior.vhd" || tables.Files[0].Role != "" {
		t.Errorf("files not sorted or role guessed: %+v", tables.Files)
	}
	if len(tables.Modules) != 1 || len(tables.Ports) != 1 || tables.Ports[0].Module != "AND_GATE" {
		t.Fatalf("unexpected modules/ports: %+v %+v", tables.Modules, tables.Ports)
	}
	if len(tables.Instances) != 1 || tables.Instances[0].Target != "AND_GATE" {
		t.Fatalf("expected one instance row, got %+v", tables.Instances)
	}
	if len(tables.Dependencies) != 1 {
		t.Fatalf("expected 1 dependency row, got %d", len(tables.Dependencies))
	}
	if got := tables.ModuleFiles()["AND_GATE"]; len(got) != 1 {
		t.Errorf("ModuleFiles = %v", got)
	}
}
