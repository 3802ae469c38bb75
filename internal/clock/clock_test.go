package clock

import (
	"strings"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

func TestTickPeriodThree(t *testing.T) {
	tc := NewTickCounter(3)
	ticks := 0
	for cycle := 1; cycle <= 9; cycle++ {
		before := tc.Count()
		tick, after := tc.Step()
		if !tick {
			continue
		}
		ticks++
		if before != 1 {
			t.Fatalf("cycle %d: tick preceded by count %d, want 1", cycle, before)
		}
		if after != 3 {
			t.Fatalf("cycle %d: counter reloaded to %d, want 3", cycle, after)
		}
	}
	if ticks != 3 {
		t.Fatalf("got %d ticks in 9 cycles, want 3", ticks)
	}
}

func TestTickCounterMatchesGeneratedText(t *testing.T) {
	const period = 3
	tc := NewTickCounter(period)
	params := TickParams(TickConfig{Mode: Static, Period: period})
	if tc.reload != period || genericValue(params, tickReloadGeneric) != period {
		t.Fatalf("reload = %d, params = %v", tc.reload, params)
	}
	if tc.mask != 1<<uint(genericValue(params, tickBitsGeneric))-1 {
		t.Fatalf("mask = %b, params = %v", tc.mask, params)
	}
	if tc.Count() != tickCount {
		t.Fatalf("power-up count = %d", tc.Count())
	}

	vhdl := TickGenerator(hdl.VHDL, TickConfig{Mode: Static, Period: period})
	text := strings.Join(vhdl.Behavior, "\n")
	for _, want := range []string{
		"when unsigned(s_count_reg) = 1 else",
		":= std_logic_vector(to_unsigned(1, NrOfBits));",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("VHDL tick generator missing %q:\n%s", want, text)
		}
	}
	verilog := strings.Join(TickGenerator(hdl.Verilog, TickConfig{Mode: Static, Period: period}).Behavior, "\n")
	for _, want := range []string{"(s_count_reg == 1)", "s_count_reg = 1;"} {
		if !strings.Contains(verilog, want) {
			t.Errorf("Verilog tick generator missing %q:\n%s", want, verilog)
		}
	}
}

func TestTickPeriodOneHoldsTick(t *testing.T) {
	tc := NewTickCounter(1)
	for cycle := 1; cycle <= 4; cycle++ {
		if tick, _ := tc.Step(); !tick {
			t.Fatalf("cycle %d: tick low", cycle)
		}
	}
}

func TestSourceModelDividesTicks(t *testing.T) {
	m := NewSourceModel(Source{HighTicks: 2, LowTicks: 1})
	var derived, pos, neg []bool
	for i := 0; i < 6; i++ {
		m.Step(true)
		bus := m.Bus(true)
		derived = append(derived, bus[DerivedClock])
		pos = append(pos, bus[PositiveEdgeTick])
		neg = append(neg, bus[NegativeEdgeTick])
	}
	wantDerived := []bool{true, true, false, true, true, false}
	wantPos := []bool{true, false, false, true, false, false}
	wantNeg := []bool{false, false, true, false, false, true}
	for i := range wantDerived {
		if derived[i] != wantDerived[i] || pos[i] != wantPos[i] || neg[i] != wantNeg[i] {
			t.Fatalf("step %d: derived=%v pos=%v neg=%v", i+1, derived, pos, neg)
		}
	}
}

func TestSourceModelHoldsWithoutTick(t *testing.T) {
	m := NewSourceModel(Source{HighTicks: 1, LowTicks: 1})
	m.Step(false)
	if bus := m.Bus(false); bus[DerivedClock] || bus[PositiveEdgeTick] || !bus[InvertedGlobalClock] {
		t.Fatalf("bus changed without tick: %v", bus)
	}
}

func TestTriggerIndex(t *testing.T) {
	tests := map[string]int{
		"rising":  PositiveEdgeTick,
		"":        PositiveEdgeTick,
		"falling": NegativeEdgeTick,
		"high":    DerivedClock,
		"low":     InvertedDerivedClock,
	}
	for trigger, want := range tests {
		if got := TriggerIndex(trigger); got != want {
			t.Fatalf("TriggerIndex(%q) = %d, want %d", trigger, got, want)
		}
	}
	if ModeOf(-1) != Dynamic || ModeOf(0) != Raw || ModeOf(5) != Static {
		t.Fatalf("ModeOf mapping wrong")
	}
}

func TestTickGeneratorText(t *testing.T) {
	static := TickGenerator(hdl.VHDL, TickConfig{Mode: Static, Period: 3})
	text := strings.Join(static.Behavior, "\n")
	for _, want := range []string{
		"s_tick_next  <= '1' when unsigned(s_count_reg) = 1 else '0';",
		"std_logic_vector(to_unsigned(ReloadValue, NrOfBits)) when s_tick_next = '1' else",
		"rising_edge(FPGAClock)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("VHDL tick generator missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(strings.Join(static.Entity, "\n"), "ReloadValue : integer") {
		t.Fatalf("entity lacks ReloadValue generic:\n%s", strings.Join(static.Entity, "\n"))
	}

	raw := TickGenerator(hdl.Verilog, TickConfig{Mode: Raw})
	if !strings.Contains(strings.Join(raw.Behavior, "\n"), "assign FPGATick = 1'b1;") {
		t.Fatalf("raw tick generator:\n%s", strings.Join(raw.Behavior, "\n"))
	}

	dyn := TickGenerator(hdl.Verilog, TickConfig{Mode: Dynamic, DynamicBits: 8})
	if !strings.Contains(strings.Join(dyn.Behavior, "\n"), "s_tick_next ? ReloadValue : s_count_reg - 1") {
		t.Fatalf("dynamic tick generator:\n%s", strings.Join(dyn.Behavior, "\n"))
	}
	if p := TickParams(TickConfig{Mode: Static, Period: 3}); p[0].Actual != "2" || p[1].Actual != "3" {
		t.Fatalf("params = %v", p)
	}
}

func TestClockSourceRawBus(t *testing.T) {
	m := ClockSource(hdl.VHDL, true)
	text := strings.Join(m.Behavior, "\n")
	if !strings.Contains(text, "ClockBus <= not(GlobalClock) & GlobalClock & '1' & '1' & not(GlobalClock) & GlobalClock;") {
		t.Fatalf("raw clock source:\n%s", text)
	}
	if (Source{HighTicks: 5, LowTicks: 3}).Bits() != 3 {
		t.Fatalf("Bits = %d", (Source{HighTicks: 5, LowTicks: 3}).Bits())
	}
}
