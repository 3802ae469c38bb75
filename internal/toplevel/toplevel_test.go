package toplevel

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/board"
	"github.com/robert-at-pretension-io/hdlgen/internal/circuit"
	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

const design = `{
  "name": "blinky",
  "top": "main",
  "clockTrees": [{"id": 0, "highTicks": 1, "lowTicks": 1, "phase": 0}],
  "circuits": [{
    "name": "main",
    "nets": [{"id": 0, "width": 1, "clockTree": 0}, {"id": 1, "width": 1}, {"id": 2, "width": 1}],
    "components": [
      {"id": 1, "kind": "clock", "ends": [{"name": "Output", "output": true, "points": [{"net": 0, "bit": 0}]}]},
      {"id": 2, "kind": "pin", "attrs": {"label": "A"}, "ends": [{"name": "pin", "points": [{"net": 1, "bit": 0}]}]},
      {"id": 3, "kind": "register", "ends": [
        {"name": "Clock", "points": [{"net": 0, "bit": 0}]},
        {"name": "D", "points": [{"net": 1, "bit": 0}]},
        {"name": "Q", "output": true, "points": [{"net": 2, "bit": 0}]}
      ]},
      {"id": 4, "kind": "pin", "attrs": {"label": "Q", "output": true},
       "ends": [{"name": "pin", "points": [{"net": 2, "bit": 0}, {"net": -1, "bit": 0}]}]},
      {"id": 5, "kind": "button", "ends": [{"name": "Output", "output": true, "points": [{"net": -1, "bit": 0}]}]},
      {"id": 6, "kind": "led", "ends": [{"name": "Input", "points": [{"net": 2, "bit": 0}]}]}
    ]
  }]
}`

const boardYAML = `
name: Basys3
vendor: xilinx
clock:
  pin: W5
  frequency: 100000000
mappings:
  - path: A
    bits:
      - pin: V17
        inverted: true
  - path: Q
    bits:
      - pin: U16
      - open: true
  - path: button5
    bits:
      - constant: 1
`

func setup(t *testing.T, text string, lang hdl.Language) (components.Context, map[string]circuit.Layout) {
	t.Helper()
	d, err := netlist.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctx := components.Context{Lang: lang, Vendor: hdl.Xilinx, Design: d, Sink: report.NewSink(nil)}
	names, err := circuit.Plan(ctx)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	ctx.Names = names
	return ctx, circuit.Layouts(d)
}

func squash(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(out, "\n")
}

func warnings(s *report.Sink) []string {
	var out []string
	for _, m := range s.Messages() {
		if m.Severity == report.Warning {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestWrapperWithBoard(t *testing.T) {
	ctx, layouts := setup(t, design, hdl.VHDL)
	b, err := board.Parse([]byte(boardYAML))
	if err != nil {
		t.Fatal(err)
	}
	w, err := Generate(ctx, layouts, Options{Tick: clock.TickConfig{Mode: clock.Static, Period: 3}, Board: b})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w.Module.Name != "FPGAToplevel" || w.Module.Subdir != Category {
		t.Fatalf("module = %s/%s", w.Module.Subdir, w.Module.Name)
	}
	body := squash(w.Module.Behavior)
	for _, want := range []string{
		"TICK_GENERATOR : LogisimTickGenerator",
		"ReloadValue => 3",
		"FPGAClock => FPGA_GlobalClock,",
		"CLOCK_SOURCE_0 : LogisimClockComponent",
		"ClockBus => s_LOGISIM_CLOCK_TREE_0",
		"s_A <= not(FPGA_INPUT_PIN_0);",
		"s_LOGISIM_HIDDEN_FPGA_INPUT <= '1';",
		"FPGA_OUTPUT_PIN_0 <= s_Q(0);",
		"CircuitUnderTest : main",
		"LOGISIM_CLOCK_TREE_0 => s_LOGISIM_CLOCK_TREE_0,",
		"LOGISIM_HIDDEN_FPGA_OUTPUT => s_LOGISIM_HIDDEN_FPGA_OUTPUT,",
		"component LogisimClockComponent",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("wrapper lacks %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "s_Q(1)") {
		t.Errorf("open output bit must stay unassigned:\n%s", body)
	}
	entity := squash(w.Module.Entity)
	for _, want := range []string{"FPGA_GlobalClock : in std_logic;", "FPGA_INPUT_PIN_0 : in std_logic;", "FPGA_OUTPUT_PIN_0 : out std_logic"} {
		if !strings.Contains(entity, want) {
			t.Errorf("entity lacks %q:\n%s", want, entity)
		}
	}

	if len(w.Pins) != 2 || w.Pins[0].Pin != "V17" || w.Pins[1].Source != "Q bit 0" {
		t.Fatalf("pins = %+v", w.Pins)
	}
	ws := warnings(ctx.Sink)
	if len(ws) != 1 || !strings.Contains(ws[0], "led6 bit 0") {
		t.Fatalf("expected one warning for the unmapped LED, got %v", ws)
	}

	if len(w.Module.Extras) != 1 || w.Module.Extras[0].Name != "FPGAToplevel.xdc" {
		t.Fatalf("extras = %+v", w.Module.Extras)
	}
	xdc := string(w.Module.Extras[0].Content)
	for _, want := range []string{
		"set_property PACKAGE_PIN W5 [get_ports {FPGA_GlobalClock}]",
		"create_clock -period 10.000 -name FPGA_GlobalClock",
		"set_property PACKAGE_PIN V17 [get_ports {FPGA_INPUT_PIN_0}]",
		"set_property PACKAGE_PIN U16 [get_ports {FPGA_OUTPUT_PIN_0}]",
	} {
		if !strings.Contains(xdc, want) {
			t.Errorf("constraints lack %q:\n%s", want, xdc)
		}
	}
}

func TestWrapperWithoutBoard(t *testing.T) {
	ctx, layouts := setup(t, design, hdl.Verilog)
	w, err := Generate(ctx, layouts, Options{Tick: clock.TickConfig{Mode: clock.Raw}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(w.Pins) != 0 || len(w.Module.Extras) != 0 {
		t.Fatalf("expected no pins and no constraints, got %+v", w)
	}
	body := squash(w.Module.Behavior)
	for _, want := range []string{"assign s_A = 1'b0;", "assign s_LOGISIM_HIDDEN_FPGA_INPUT = 1'b0;", "main CircuitUnderTest ("} {
		if !strings.Contains(body, want) {
			t.Errorf("wrapper lacks %q:\n%s", want, body)
		}
	}
	// Two unmapped inputs and three unmapped output bits.
	if n := len(warnings(ctx.Sink)); n != 5 {
		t.Errorf("expected 5 warnings, got %d: %v", n, warnings(ctx.Sink))
	}
}

const portDesign = `{
  "name": "ports",
  "top": "main",
  "circuits": [{
    "name": "main",
    "nets": [{"id": 0, "width": 2}],
    "components": [
      {"id": 1, "kind": "portio", "attrs": {"width": 2}, "ends": [{"name": "DataOut", "output": true, "points": [{"net": 0, "bit": 0}, {"net": 0, "bit": 1}]}]},
      {"id": 2, "kind": "pin", "attrs": {"label": "D", "output": true, "width": 2}, "ends": [{"name": "pin", "points": [{"net": 0, "bit": 0}, {"net": 0, "bit": 1}]}]}
    ]
  }]
}`

func TestInOutMapping(t *testing.T) {
	ctx, layouts := setup(t, portDesign, hdl.Verilog)
	ctx.Vendor = hdl.Generic
	if _, err := Generate(ctx, layouts, Options{}); err == nil || !strings.Contains(err.Error(), "portio1 bit 0") {
		t.Fatalf("expected fatal error for unmapped inout, got %v", err)
	}

	b, err := board.Parse([]byte("mappings:\n  - path: portio1\n    bits:\n      - pin: P0\n      - pin: P1\n"))
	if err != nil {
		t.Fatal(err)
	}
	w, err := Generate(ctx, layouts, Options{Board: b})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body := squash(w.Module.Behavior)
	if !strings.Contains(body, ".LOGISIM_HIDDEN_FPGA_INOUT({FPGA_INOUT_PIN_1, FPGA_INOUT_PIN_0})") {
		t.Errorf("inout pins not concatenated:\n%s", body)
	}
	if strings.Contains(body, "TICK_GENERATOR") {
		t.Errorf("a design without clock trees needs no tick generator:\n%s", body)
	}
	lpf := string(w.Module.Extras[0].Content)
	if w.Module.Extras[0].Name != "FPGAToplevel.lpf" || !strings.Contains(lpf, `LOCATE COMP "FPGA_INOUT_PIN_1" SITE "P1";`) {
		t.Errorf("constraints %s:\n%s", w.Module.Extras[0].Name, lpf)
	}
}

func TestConstantOutputIsFatal(t *testing.T) {
	ctx, layouts := setup(t, design, hdl.VHDL)
	b, err := board.Parse([]byte("mappings:\n  - path: Q\n    bits:\n      - constant: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(ctx, layouts, Options{Board: b}); err == nil {
		t.Fatal("expected an output mapped to a constant to be fatal")
	}
}

func TestPinCannotShadowTickSignal(t *testing.T) {
	ctx, layouts := setup(t, strings.Replace(design, `"label": "A"`, `"label": "FPGA_Tick"`, 1), hdl.VHDL)
	w, err := Generate(ctx, layouts, Options{Tick: clock.TickConfig{Mode: clock.Static, Period: 3}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	body := squash(w.Module.Behavior)
	for _, want := range []string{
		"s_FPGA_Tick_1 <= '0';",
		"FPGA_Tick_1 => s_FPGA_Tick_1",
		"signal s_FPGA_Tick ",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("wrapper lacks %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "s_FPGA_Tick <= '0';") {
		t.Errorf("tick signal must only be driven by the tick generator:\n%s", body)
	}
}
