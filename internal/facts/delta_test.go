package facts

import "testing"

func TestComputeDeltaAddsAndRemoves(t *testing.T) {
	prev := Tables{
		Files: []FileRow{
			{Path: "verilog/gates/AND_GATE.v", Role: "module", Hash: "aa"},
		},
		Modules: []ModuleRow{
			{Name: "AND_GATE", File: "verilog/gates/AND_GATE.v", Line: 4},
		},
	}
	next := Tables{
		Files: []FileRow{
			{Path: "verilog/gates/AND_GATE.v", Role: "module", Hash: "bb"},
		},
		Modules: []ModuleRow{
			{Name: "AND_GATE", File: "verilog/gates/AND_GATE.v", Line: 4},
			{Name: "OR_GATE", File: "verilog/gates/OR_GATE.v", Line: 4},
		},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Modules) != 1 || delta.Added.Modules[0].Name != "OR_GATE" {
		t.Fatalf("expected OR_GATE added, got %+v", delta.Added.Modules)
	}
	if len(delta.Removed.Modules) != 0 {
		t.Fatalf("expected no module removed, got %+v", delta.Removed.Modules)
	}
	if len(delta.Added.Files) != 1 || delta.Added.Files[0].Hash != "bb" {
		t.Fatalf("expected changed file added, got %+v", delta.Added.Files)
	}
	if len(delta.Removed.Files) != 1 || delta.Removed.Files[0].Hash != "aa" {
		t.Fatalf("expected changed file removed, got %+v", delta.Removed.Files)
	}
	if delta.Empty() {
		t.Fatal("delta should not be empty")
	}
	if !ComputeDelta(next, next).Empty() {
		t.Fatal("identical snapshots should give an empty delta")
	}
}
