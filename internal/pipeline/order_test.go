package pipeline

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

func TestCompileOrder(t *testing.T) {
	tables := facts.Tables{
		Files: []facts.FileRow{
			{Path: "vhdl/circuit/main_behavior.vhd", Language: "VHDL", Role: RoleBehavior},
			{Path: "vhdl/circuit/main_entity.vhd", Language: "VHDL", Role: RoleEntity},
			{Path: "vhdl/gates/AND_GATE_behavior.vhd", Language: "VHDL", Role: RoleBehavior},
			{Path: "vhdl/gates/AND_GATE_entity.vhd", Language: "VHDL", Role: RoleEntity},
			{Path: "vhdl/memory/ROM_boot.mem", Role: RoleMemory},
			{Path: "vhdl/toplevel/FPGAToplevel_behavior.vhd", Language: "VHDL", Role: RoleBehavior},
			{Path: "vhdl/toplevel/FPGAToplevel_entity.vhd", Language: "VHDL", Role: RoleEntity},
		},
		Modules: []facts.ModuleRow{
			{Name: "main", File: "vhdl/circuit/main_entity.vhd", Line: 9},
			{Name: "AND_GATE", File: "vhdl/gates/AND_GATE_entity.vhd", Line: 9},
			{Name: "FPGAToplevel", File: "vhdl/toplevel/FPGAToplevel_entity.vhd", Line: 9},
		},
		Instances: []facts.InstanceRow{
			{Name: "GATES_1", Target: "and_gate", File: "vhdl/circuit/main_behavior.vhd", Line: 20, InModule: "main"},
			{Name: "CircuitUnderTest", Target: "main", File: "vhdl/toplevel/FPGAToplevel_behavior.vhd", Line: 30, InModule: "FPGAToplevel"},
		},
	}

	got := strings.Join(CompileOrder(tables), "\n")
	want := strings.Join([]string{
		"vhdl/circuit/main_entity.vhd",
		"vhdl/gates/AND_GATE_entity.vhd",
		"vhdl/circuit/main_behavior.vhd",
		"vhdl/gates/AND_GATE_behavior.vhd",
		"vhdl/toplevel/FPGAToplevel_entity.vhd",
		"vhdl/toplevel/FPGAToplevel_behavior.vhd",
	}, "\n")
	if got != want {
		t.Fatalf("compile order:\n%s\nwant:\n%s", got, want)
	}
}

func TestRoleOf(t *testing.T) {
	gate := emit.Module{Name: "AND_GATE"}
	box := emit.Module{Name: "uart", Verbatim: []byte("entity uart is end;")}
	tests := []struct {
		module emit.Module
		path   string
		want   string
	}{
		{gate, "out/vhdl/gates/AND_GATE_entity.vhd", RoleEntity},
		{gate, "out/vhdl/gates/AND_GATE_behavior.vhd", RoleBehavior},
		{box, "out/vhdl/circuit/uart.vhd", RoleBlackBox},
		{gate, "out/vhdl/memory/ROM_boot.mem", RoleMemory},
		{gate, "out/vhdl/toplevel/FPGAToplevel.xdc", RoleConstraint},
	}
	for _, tt := range tests {
		if got := roleOf(hdl.VHDL, tt.module, tt.path); got != tt.want {
			t.Errorf("roleOf(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
	if got := roleOf(hdl.Verilog, gate, "out/verilog/gates/AND_GATE.v"); got != RoleModule {
		t.Errorf("verilog module role = %s", got)
	}
}

func TestScanTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vhdl/gates/AND_GATE_entity.vhd", "entity AND_GATE is\n   port (\n      Input_1 : in  std_logic;\n      Result  : out std_logic\n   );\nend entity AND_GATE;\n")
	writeFile(t, dir, "vhdl/circuit/uart.vhd", "entity uart is\nend entity uart;\n")
	writeFile(t, dir, "vhdl/memory/ROM_boot.mem", "00\n01\n")
	writeFile(t, dir, ManifestFile, "{}")
	writeFile(t, dir, OrderFile, "vhdl/gates/AND_GATE_entity.vhd\n")

	tables, err := ScanTree(dir)
	if err != nil {
		t.Fatalf("ScanTree: %v", err)
	}
	roles := map[string]string{}
	for _, f := range tables.Files {
		roles[f.Path] = f.Role
	}
	want := map[string]string{
		"vhdl/circuit/uart.vhd":          RoleBlackBox,
		"vhdl/gates/AND_GATE_entity.vhd": RoleEntity,
		"vhdl/memory/ROM_boot.mem":       RoleMemory,
	}
	if len(roles) != len(want) {
		t.Fatalf("files = %v", roles)
	}
	for path, role := range want {
		if roles[path] != role {
			t.Fatalf("%s role = %q, want %q", path, roles[path], role)
		}
	}
	if len(tables.Modules) != 2 || len(tables.Ports) != 2 {
		t.Fatalf("modules = %+v, ports = %+v", tables.Modules, tables.Ports)
	}
}
