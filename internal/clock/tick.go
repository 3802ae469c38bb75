package clock

import (
	"math/bits"
	"strconv"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// Tick generator ports and generics.
const (
	TickClockPort  = "FPGAClock"
	TickOutPort    = "FPGATick"
	TickReloadPort = "ReloadValue"

	tickBitsGeneric   = "NrOfBits"
	tickReloadGeneric = "ReloadValue"

	// tickCount is the power-up counter value and the value that asserts
	// the tick.
	tickCount = 1
)

// TickConfig describes the tick generator of one design.
type TickConfig struct {
	Mode   Mode
	Period int
	// DynamicBits is the width of the run-time reload value.
	DynamicBits int
}

// CounterBits is the counter width needed to hold n.
func CounterBits(n int) int {
	if n < 1 {
		return 1
	}
	return bits.Len(uint(n))
}

// TickInterface declares the tick generator for cfg.
func TickInterface(cfg TickConfig) hdl.Interface {
	var iface hdl.Interface
	iface.Inputs.Add(TickClockPort, 1)
	iface.Outputs.Add(TickOutPort, 1)
	switch cfg.Mode {
	case Static:
		iface.Generics.Add(-1, tickBitsGeneric)
		iface.Generics.Add(-2, tickReloadGeneric)
	case Dynamic:
		iface.Generics.Add(-1, tickBitsGeneric)
		iface.Inputs.Add(TickReloadPort, -1)
	}
	if cfg.Mode != Raw {
		iface.Registers.Add("s_count_reg", -1)
		iface.Wires.Add("s_count_next", -1)
		iface.Registers.Add("s_tick_reg", 1)
		iface.Wires.Add("s_tick_next", 1)
	}
	return iface
}

// TickParams are the generic values the wrapper assigns.
func TickParams(cfg TickConfig) []hdl.Assoc {
	switch cfg.Mode {
	case Static:
		return []hdl.Assoc{
			{Formal: tickBitsGeneric, Actual: itoa(CounterBits(cfg.Period))},
			{Formal: tickReloadGeneric, Actual: itoa(cfg.Period)},
		}
	case Dynamic:
		return []hdl.Assoc{{Formal: tickBitsGeneric, Actual: itoa(cfg.DynamicBits)}}
	}
	return nil
}

// TickGenerator builds the tick generator module. In raw mode the tick is
// held high. Otherwise a down counter starting at 1 asserts the tick for
// one oscillator period whenever it reaches 1, then reloads.
func TickGenerator(lang hdl.Language, cfg TickConfig) emit.Module {
	iface := TickInterface(cfg)
	if cfg.Mode != Raw {
		if lang == hdl.VHDL {
			iface.SetInitial("s_count_reg", "std_logic_vector(to_unsigned("+itoa(tickCount)+", NrOfBits))")
			iface.SetInitial("s_tick_reg", "'0'")
		} else {
			iface.SetInitial("s_count_reg", itoa(tickCount))
			iface.SetInitial("s_tick_reg", "1'b0")
		}
	}
	reload := tickReloadGeneric
	if cfg.Mode == Dynamic {
		reload = TickReloadPort
	}
	b := hdl.NewBuilder(lang)
	switch {
	case cfg.Mode == Raw:
		b.Text(lang.Assign(TickOutPort, lang.Bit(1)))
	case lang == hdl.VHDL:
		if cfg.Mode == Static {
			reload = "std_logic_vector(to_unsigned(" + tickReloadGeneric + ", " + tickBitsGeneric + "))"
		}
		b.Add("FPGATick     <= s_tick_reg;")
		b.Add("s_tick_next  <= '1' when unsigned(s_count_reg) = %d else '0';", tickCount)
		b.Add("s_count_next <= %s when s_tick_next = '1' else", reload)
		b.Add("                std_logic_vector(unsigned(s_count_reg) - 1);")
		b.Empty()
		b.Add("make_counter : process(FPGAClock)")
		b.Add("begin")
		b.Indent().Add("if rising_edge(FPGAClock) then")
		b.Indent().Add("s_count_reg <= s_count_next;").Add("s_tick_reg  <= s_tick_next;").Dedent()
		b.Add("end if;").Dedent()
		b.Add("end process make_counter;")
	default:
		b.Add("assign FPGATick     = s_tick_reg;")
		b.Add("assign s_tick_next  = (s_count_reg == %d) ? 1'b1 : 1'b0;", tickCount)
		b.Add("assign s_count_next = s_tick_next ? %s : s_count_reg - 1;", reload)
		b.Empty()
		b.Add("always @(posedge FPGAClock)")
		b.Add("begin")
		b.Indent().Add("s_count_reg <= s_count_next;").Add("s_tick_reg  <= s_tick_next;").Dedent()
		b.Add("end")
	}
	doc := []string{"Tick generator, mode " + cfg.Mode.String()}
	return build(lang, TickModule, iface, b.Lines(), doc)
}

func build(lang hdl.Language, name string, iface hdl.Interface, body []string, doc []string) emit.Module {
	m := emit.Module{Name: name, Subdir: Category}
	if lang == hdl.VHDL {
		m.Entity = hdl.Entity(name, iface, doc...)
		m.Behavior = hdl.Architecture(name, iface, nil, body, doc...)
	} else {
		m.Behavior = hdl.Module(name, iface, body, doc...)
	}
	return m
}

// TickCounter is a cycle model of the generated tick generator registers.
type TickCounter struct {
	reload uint64
	mask   uint64
	count  uint64
	tick   bool
}

// NewTickCounter models a static generator with the given period, sized
// by the generics the wrapper would assign.
func NewTickCounter(period int) *TickCounter {
	params := TickParams(TickConfig{Mode: Static, Period: period})
	w := genericValue(params, tickBitsGeneric)
	return &TickCounter{
		reload: uint64(genericValue(params, tickReloadGeneric)),
		mask:   uint64(1)<<uint(w) - 1,
		count:  tickCount,
	}
}

func genericValue(params []hdl.Assoc, name string) int {
	for _, p := range params {
		if p.Formal == name {
			v, _ := strconv.Atoi(p.Actual)
			return v
		}
	}
	return 0
}

// Step applies one rising oscillator edge and returns the registered tick
// and counter values after it.
func (t *TickCounter) Step() (tick bool, count uint64) {
	next := t.count == tickCount
	if next {
		t.count = t.reload & t.mask
	} else {
		t.count = (t.count - 1) & t.mask
	}
	t.tick = next
	return t.tick, t.count
}

// Count is the current counter register value.
func (t *TickCounter) Count() uint64 {
	return t.count
}
