package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

func point(net, bit int) netlist.ConnectionPoint {
	return netlist.ConnectionPoint{Net: net, Bit: bit}
}

func end(name string, output bool, points ...netlist.ConnectionPoint) netlist.ConnectionEnd {
	return netlist.ConnectionEnd{Name: name, Output: output, Points: points}
}

func comp(id int, kind netlist.Kind, attrs map[string]string, ends ...netlist.ConnectionEnd) *netlist.Component {
	return &netlist.Component{ID: id, Kind: kind, Attrs: netlist.Attributes(attrs), Ends: ends}
}

// testContext plans module names for comps in a circuit called main.
func testContext(t *testing.T, lang hdl.Language, vendor hdl.Vendor, comps ...*netlist.Component) Context {
	t.Helper()
	circ := &netlist.Circuit{Name: "main", Components: comps}
	ctx := Context{
		Lang:    lang,
		Vendor:  vendor,
		Design:  &netlist.Design{Name: "test", Top: "main", Circuits: []*netlist.Circuit{circ}},
		Circuit: circ,
		Names:   NewNames(),
		Sink:    report.NewSink(nil),
	}
	for _, c := range comps {
		name, _, err := BaseName(ctx, c)
		if err != nil {
			t.Fatalf("BaseName(%s): %v", c, err)
		}
		ctx.Names.SetModule("main", c.ID, name)
	}
	return ctx
}

func joined(lines []string) string {
	return strings.Join(lines, "\n")
}

func TestEveryKindIsDispatched(t *testing.T) {
	for _, k := range netlist.Kinds() {
		_, err := Lookup(k)
		if IsSpecial(k) {
			if err == nil {
				t.Errorf("%s is wired by the orchestrator but has a generator", k)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%s): %v", k, err)
		}
	}
	if _, err := Lookup("flux_capacitor"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestAndGateText(t *testing.T) {
	and := comp(1, netlist.KindAnd, nil,
		end("Input_1", false, point(0, 0)),
		end("Input_2", false, point(1, 0)),
		end("Result", true, point(2, 0)))

	for _, tt := range []struct {
		lang hdl.Language
		want string
	}{
		{hdl.VHDL, "Result <= Input_1 and Input_2;"},
		{hdl.Verilog, "assign Result = Input_1 & Input_2;"},
	} {
		ctx := testContext(t, tt.lang, hdl.Generic, and)
		m, err := Generate(ctx, and)
		if err != nil {
			t.Fatalf("%s: Generate: %v", tt.lang, err)
		}
		if m.Name != "AND_GATE" || m.Subdir != "gates" {
			t.Errorf("%s: module %s in %s", tt.lang, m.Name, m.Subdir)
		}
		if !strings.Contains(joined(m.Behavior), tt.want) {
			t.Errorf("%s: behavior lacks %q:\n%s", tt.lang, tt.want, joined(m.Behavior))
		}
		if (tt.lang == hdl.VHDL) != (len(m.Entity) > 0) {
			t.Errorf("%s: entity presence wrong", tt.lang)
		}
	}
}

func TestGateTemplates(t *testing.T) {
	tests := []struct {
		kind  netlist.Kind
		attrs map[string]string
		want  string
	}{
		{netlist.KindAnd, nil, "AND_GATE"},
		{netlist.KindAnd, map[string]string{"width": "8"}, "AND_GATE_BUS"},
		{netlist.KindOr, map[string]string{"inputs": "3"}, "OR_GATE_3_INPUTS"},
		{netlist.KindXnor, map[string]string{"inputs": "4", "width": "2"}, "XNOR_GATE_4_INPUTS_BUS"},
		{netlist.KindNot, map[string]string{"width": "2"}, "INVERTER_BUS"},
		{netlist.KindRegister, map[string]string{"trigger": "falling"}, "REGISTER_FALLING_EDGE"},
		{netlist.KindRegister, map[string]string{"width": "4", "trigger": "high"}, "REGISTER_BUS_LEVEL_HIGH"},
		{netlist.KindMux, map[string]string{"select": "2"}, "MULTIPLEXER_4"},
		{netlist.KindDipSwitch, map[string]string{"width": "5"}, "DIPSWITCH_5"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			c := comp(1, tt.kind, tt.attrs)
			ctx := testContext(t, hdl.VHDL, hdl.Generic, c)
			got, _ := ctx.Names.Module("main", 1)
			if got != tt.want {
				t.Errorf("module name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBindBusGateGenerics(t *testing.T) {
	and := comp(1, netlist.KindAnd, map[string]string{"width": "2"},
		end("Input_1", false, point(0, 0), point(0, 1)),
		end("Result", true, point(1, 0), point(1, 1)))
	ctx := testContext(t, hdl.VHDL, hdl.Generic, and)

	b, err := Bind(ctx, and)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(b.Generics) != 1 || b.Generics[0] != (hdl.Assoc{Formal: "NrOfBits", Actual: "2"}) {
		t.Errorf("generics = %+v", b.Generics)
	}
	if len(b.Ports) != 3 {
		t.Fatalf("ports = %+v", b.Ports)
	}
	// Input_2 has no end: it floats and takes the gate's identity value.
	in2 := b.Ports[1]
	if in2.Spec.Name != "Input_2" || in2.End.Connected() || in2.Spec.Default != 1 || in2.Width != 2 {
		t.Errorf("Input_2 binding = %+v", in2)
	}
	if b.Ports[2].Direction != "out" {
		t.Errorf("Result direction = %s", b.Ports[2].Direction)
	}
}

func TestBindWidthMismatchIsFatal(t *testing.T) {
	and := comp(1, netlist.KindAnd, nil,
		end("Input_1", false, point(0, 0), point(0, 1)))
	ctx := testContext(t, hdl.VHDL, hdl.Generic, and)

	_, err := Bind(ctx, and)
	var fatal *report.FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if fatal.Module != "AND_GATE" {
		t.Errorf("fatal module = %q", fatal.Module)
	}
}

func TestRegisterUsesClockBus(t *testing.T) {
	reg := comp(1, netlist.KindRegister, map[string]string{"trigger": "falling"},
		end("D", false, point(0, 0)),
		end("Clock", false, point(1, 0)),
		end("Q", true, point(2, 0)))

	ctx := testContext(t, hdl.VHDL, hdl.Generic, reg)
	m, err := Generate(ctx, reg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body := joined(m.Behavior)
	for _, want := range []string{"rising_edge(ClockBus(4))", "if (ClockBus(3) = '1' and Enable = '1') then", "signal s_state_reg : std_logic := '0';"} {
		if !strings.Contains(body, want) {
			t.Errorf("behavior lacks %q:\n%s", want, body)
		}
	}
	if !IsClocked(reg) {
		t.Error("register should be clocked")
	}

	b, err := Bind(ctx, reg)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	var clockPort *PortBinding
	for i := range b.Ports {
		if b.Ports[i].Spec.Clock {
			clockPort = &b.Ports[i]
		}
	}
	if clockPort == nil || clockPort.Width != 6 || clockPort.End.Name != ClockEnd {
		t.Errorf("clock binding = %+v", clockPort)
	}

	ctx = testContext(t, hdl.Verilog, hdl.Generic, reg)
	m, err = Generate(ctx, reg)
	if err != nil {
		t.Fatalf("Generate verilog: %v", err)
	}
	if !strings.Contains(joined(m.Behavior), "always @(posedge ClockBus[4] or posedge Reset)") {
		t.Errorf("verilog behavior:\n%s", joined(m.Behavior))
	}
}

func TestLaneWords(t *testing.T) {
	words := LaneWords([]uint64{0x1, 0x2, 0x3, 0x14, 0x5}, 4, 2, 4)
	want := [][]uint64{{0x1, 0x3, 0x5, 0}, {0x2, 0x4, 0, 0}}
	for lane := range want {
		for i := range want[lane] {
			if words[lane][i] != want[lane][i] {
				t.Fatalf("lane %d = %v, want %v", lane, words[lane], want[lane])
			}
		}
	}
}

func TestMIFFormat(t *testing.T) {
	got := string(MIF([]uint64{0xA, 0x1F}, 8))
	want := "-- Generated by hdlgen\n" +
		"DEPTH = 2;\n" +
		"WIDTH = 8;\n" +
		"ADDRESS_RADIX = HEX;\n" +
		"DATA_RADIX = HEX;\n" +
		"CONTENT\nBEGIN\n" +
		"   0 : 0A;\n" +
		"   1 : 1F;\n" +
		"END;\n"
	if got != want {
		t.Errorf("MIF =\n%s\nwant\n%s", got, want)
	}
	if mem := string(MemFile([]uint64{0xA, 0x1F}, 5)); mem != "0A\n1F\n" {
		t.Errorf("MemFile = %q", mem)
	}
}

func TestROMPayloadPerVendor(t *testing.T) {
	rom := comp(1, netlist.KindROM, map[string]string{
		"label": "lut", "addrBits": "2", "dataBits": "8", "contents": "1 2 3 4",
	})
	for _, tt := range []struct {
		vendor hdl.Vendor
		ext    string
		marker string
	}{
		{hdl.Altera, ".mif", "ram_init_file"},
		{hdl.Xilinx, ".mem", "f_load_t_rom_memory"},
	} {
		ctx := testContext(t, hdl.VHDL, tt.vendor, rom)
		m, err := Generate(ctx, rom)
		if err != nil {
			t.Fatalf("%s: Generate: %v", tt.vendor, err)
		}
		if len(m.Extras) != 1 || m.Extras[0].Name != m.Name+tt.ext {
			t.Fatalf("%s: extras = %+v", tt.vendor, m.Extras)
		}
		if !strings.Contains(joined(m.Behavior), tt.marker) {
			t.Errorf("%s: behavior lacks %q", tt.vendor, tt.marker)
		}
	}

	ram := comp(2, netlist.KindRAM, map[string]string{"addrBits": "2", "dataBits": "8", "contents": "1 2"})
	ctx := testContext(t, hdl.VHDL, hdl.Altera, ram)
	m, err := Generate(ctx, ram)
	if err != nil {
		t.Fatalf("RAM Generate: %v", err)
	}
	if len(m.Extras) != 0 {
		t.Errorf("RAM must not carry a payload, got %+v", m.Extras)
	}
}

const blinkVHDL = `library ieee;
use ieee.std_logic_1164.all;

entity blink is
   port (
      clk : in  std_logic;
      led : out std_logic
   );
end entity blink;

architecture rtl of blink is
begin
   led <= clk;
end rtl;
`

func TestVerbatimModule(t *testing.T) {
	attrs := map[string]string{"label": "blink", "content": blinkVHDL, "ports": "clk:in:1, led:out:1"}
	c := comp(1, netlist.KindHDL, attrs)
	ctx := testContext(t, hdl.VHDL, hdl.Generic, c)

	m, err := Generate(ctx, c)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(m.Verbatim) != blinkVHDL || m.Name != "blink" {
		t.Errorf("module = %+v", m)
	}
	b, err := Bind(ctx, c)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(b.Ports) != 2 || b.Ports[1].Direction != "out" {
		t.Errorf("ports = %+v", b.Ports)
	}

	renamed := comp(2, netlist.KindHDL, map[string]string{"label": "other", "content": blinkVHDL})
	ctx = testContext(t, hdl.VHDL, hdl.Generic, renamed)
	if _, err := Generate(ctx, renamed); err == nil {
		t.Error("expected fatal error when the text declares another entity")
	}

	verilog := comp(3, netlist.KindHDL, map[string]string{"label": "blink", "content": blinkVHDL, "language": "verilog"})
	ctx = testContext(t, hdl.VHDL, hdl.Generic, verilog)
	if _, err := Generate(ctx, verilog); err == nil {
		t.Error("expected fatal error for a language mismatch")
	}
}
