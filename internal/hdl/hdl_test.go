package hdl

import (
	"strings"
	"testing"
)

func TestLiteralSpelling(t *testing.T) {
	tests := []struct {
		lang  Language
		value uint64
		width int
		want  string
	}{
		{VHDL, 1, 1, "'1'"},
		{VHDL, 5, 4, "\"0101\""},
		{Verilog, 0, 1, "1'b0"},
		{Verilog, 6, 3, "3'b110"},
		{Verilog, 1 << 63, 65, "65'b01" + strings.Repeat("0", 63)},
	}
	for _, tt := range tests {
		if got := tt.lang.Literal(tt.value, tt.width); got != tt.want {
			t.Fatalf("%s Literal(%d, %d) = %s, want %s", tt.lang, tt.value, tt.width, got, tt.want)
		}
	}
	if got := VHDL.Fill(1, 3); got != "\"111\"" {
		t.Fatalf("Fill(1, 3) = %s", got)
	}
}

func TestSliceDegeneratesToIndex(t *testing.T) {
	if got := VHDL.Slice("s_bus_3", 2, 2); got != "s_bus_3(2)" {
		t.Fatalf("got %s", got)
	}
	if got := Verilog.Slice("s_bus_3", 4, 1); got != "s_bus_3[4:1]" {
		t.Fatalf("got %s", got)
	}
	if got := VHDL.Concat("a", "b(1)"); got != "a & b(1)" {
		t.Fatalf("got %s", got)
	}
}

func TestBuilderIndentAndComments(t *testing.T) {
	b := NewBuilder(Verilog)
	b.Add("always @(posedge clk)")
	b.Indent().Add("q <= d;\nr <= q;").Dedent()
	b.Comment("done")
	b.Empty().Empty()

	lines := b.Lines()
	want := []string{"always @(posedge clk)", "   q <= d;", "   r <= q;", "// done", ""}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q", lines)
	}
}

func TestBuilderTextIsLiteral(t *testing.T) {
	b := NewBuilder(VHDL)
	b.Indent().Text("s_x <= \"100%\";\ns_y <= s_x;")
	want := []string{"   s_x <= \"100%\";", "   s_y <= s_x;"}
	if lines := b.Lines(); strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q", lines)
	}
}

func TestGenericListDerivedEntries(t *testing.T) {
	var g GenericList
	g.Add(-1, "NrOfBits")
	g.AddDerived(-2, "NrOfBits+1")

	if !g.IsDerived(-2) || g.IsDerived(-1) {
		t.Fatalf("derived flags wrong")
	}
	if got := g.Expr(-2); got != "(NrOfBits+1)" {
		t.Fatalf("Expr(-2) = %s", got)
	}
	if real := g.Real(); len(real) != 1 || real[0] != -1 {
		t.Fatalf("Real() = %v", real)
	}
}

func TestPortWidthResolvesGenerics(t *testing.T) {
	var iface Interface
	iface.Generics.Add(-1, "NrOfBits")
	iface.Inputs.Add("DataA", -1)
	iface.Outputs.Add("CarryOut", 1)

	if w, ok := iface.PortWidth("DataA", map[int]int{-1: 8}); !ok || w != 8 {
		t.Fatalf("DataA width = %d, %v", w, ok)
	}
	if _, ok := iface.PortWidth("DataA", nil); ok {
		t.Fatalf("expected unresolved generic")
	}
	if iface.Direction("CarryOut") != "out" {
		t.Fatalf("direction = %s", iface.Direction("CarryOut"))
	}
}

func TestEntityAndModuleHeaders(t *testing.T) {
	var iface Interface
	iface.Generics.Add(-1, "NrOfBits")
	iface.Inputs.Add("A", -1)
	iface.Inputs.Add("Clock", 1)
	iface.Outputs.Add("Q", -1)

	vhdl := strings.Join(Entity("REGISTER", iface), "\n")
	for _, want := range []string{
		"entity REGISTER is",
		"NrOfBits : integer",
		"A     : in    std_logic_vector(NrOfBits-1 downto 0);",
		"Q     : out   std_logic_vector(NrOfBits-1 downto 0)",
		"end entity REGISTER;",
	} {
		if !strings.Contains(vhdl, want) {
			t.Fatalf("entity missing %q:\n%s", want, vhdl)
		}
	}

	verilog := strings.Join(Module("REGISTER", iface, []string{"assign Q = A;"}), "\n")
	for _, want := range []string{
		"module REGISTER #(",
		"parameter NrOfBits = 1",
		"input  wire [NrOfBits-1:0] A,",
		"input  wire Clock,",
		"output wire [NrOfBits-1:0] Q",
		"assign Q = A;",
		"endmodule",
	} {
		if !strings.Contains(verilog, want) {
			t.Fatalf("module missing %q:\n%s", want, verilog)
		}
	}
}

func TestInstantiateBothDialects(t *testing.T) {
	inst := Instance{
		Label:    "GATES_1",
		Module:   "AND_GATE_BUS",
		Generics: []Assoc{{"NrOfBits", "2"}},
		Ports:    []Assoc{{"Input_1", "s_net_1"}, {"Result", ""}},
	}

	vhdl := strings.Join(VHDL.Instantiate(inst), "\n")
	for _, want := range []string{"GATES_1 : AND_GATE_BUS", "generic map (", "NrOfBits => 2", "Result  => open", ");"} {
		if !strings.Contains(vhdl, want) {
			t.Fatalf("vhdl instance missing %q:\n%s", want, vhdl)
		}
	}
	if !strings.HasSuffix(vhdl, ");") {
		t.Fatalf("vhdl instance not terminated:\n%s", vhdl)
	}

	verilog := strings.Join(Verilog.Instantiate(inst), "\n")
	for _, want := range []string{"AND_GATE_BUS #(", ".NrOfBits(2)", ") GATES_1 (", ".Input_1(s_net_1),", ".Result()"} {
		if !strings.Contains(verilog, want) {
			t.Fatalf("verilog instance missing %q:\n%s", want, verilog)
		}
	}
}

func TestArchitectureDeclaresReadmemLoader(t *testing.T) {
	var iface Interface
	iface.Types.Add(MemoryType{Name: "t_mem", Depth: 16, Width: 8})
	iface.Memories.Add("s_mem_0", Memory{Type: "t_mem", InitFile: "ROM_0.mem", Style: InitReadmem})
	iface.Registers.Add("s_q", 8)
	iface.SetInitial("s_q", VHDL.Zeros(8))

	text := strings.Join(Architecture("ROM", iface, nil, []string{"s_q <= s_q;"}), "\n")
	for _, want := range []string{
		"use std.textio.all;",
		"type t_mem is array (0 to 15) of std_logic_vector(7 downto 0);",
		"impure function f_load_t_mem(file_name : string) return t_mem is",
		"signal s_q : std_logic_vector(7 downto 0) := \"00000000\";",
		"signal s_mem_0 : t_mem := f_load_t_mem(\"ROM_0.mem\");",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("architecture missing %q:\n%s", want, text)
		}
	}
}

func TestIsReservedIgnoresCase(t *testing.T) {
	for _, w := range []string{"Entity", "SIGNAL", "wire", "always"} {
		if !IsReserved(w) {
			t.Fatalf("%s should be reserved", w)
		}
	}
	if IsReserved("s_net_1") {
		t.Fatalf("s_net_1 is not reserved")
	}
}
