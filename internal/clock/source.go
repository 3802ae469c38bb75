package clock

import (
	"strconv"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// Clock source ports.
const (
	SourceClockPort = "GlobalClock"
	SourceTickPort  = "ClockTick"
	SourceBusPort   = "ClockBus"
)

// Source describes one clock tree: the derived clock is high for
// HighTicks ticks and low for LowTicks ticks, starting Phase ticks in.
type Source struct {
	HighTicks int
	LowTicks  int
	Phase     int
}

// Bits is the counter width of the clock source.
func (s Source) Bits() int {
	return CounterBits(max(s.HighTicks-1, s.LowTicks-1, s.Phase, 1))
}

// Params are the generic values of one clock source instance.
func (s Source) Params() []hdl.Assoc {
	return []hdl.Assoc{
		{Formal: "HighTicks", Actual: itoa(s.HighTicks)},
		{Formal: "LowTicks", Actual: itoa(s.LowTicks)},
		{Formal: "Phase", Actual: itoa(s.Phase)},
		{Formal: "NrOfBits", Actual: itoa(s.Bits())},
	}
}

// SourceInterface declares the clock source module.
func SourceInterface(raw bool) hdl.Interface {
	var iface hdl.Interface
	iface.Generics.Add(-1, "HighTicks")
	iface.Generics.Add(-2, "LowTicks")
	iface.Generics.Add(-3, "Phase")
	iface.Generics.Add(-4, "NrOfBits")
	iface.Inputs.Add(SourceClockPort, 1)
	iface.Inputs.Add(SourceTickPort, 1)
	iface.Outputs.Add(SourceBusPort, BusWidth)
	if !raw {
		iface.Registers.Add("s_counter_reg", -4)
		iface.Registers.Add("s_derived_clock_reg", 1)
		iface.Registers.Add("s_pos_edge_tick_reg", 1)
		iface.Registers.Add("s_neg_edge_tick_reg", 1)
		iface.Wires.Add("s_counter_next", -4)
		iface.Wires.Add("s_counter_is_zero", 1)
	}
	return iface
}

// ClockSource builds the module that turns the tick into a clock bus. In
// raw mode the bus follows the oscillator directly and both edge ticks are
// held high.
func ClockSource(lang hdl.Language, raw bool) emit.Module {
	iface := SourceInterface(raw)
	b := hdl.NewBuilder(lang)
	if raw {
		b.Text(lang.Assign(SourceBusPort, lang.Concat(
			lang.Not(SourceClockPort), SourceClockPort, lang.Bit(1), lang.Bit(1), lang.Not(SourceClockPort), SourceClockPort)))
		return build(lang, SourceModule, iface, b.Lines(), []string{"Clock source, full speed"})
	}
	if lang == hdl.VHDL {
		iface.SetInitial("s_counter_reg", "std_logic_vector(to_unsigned(Phase, NrOfBits))")
		for _, r := range []string{"s_derived_clock_reg", "s_pos_edge_tick_reg", "s_neg_edge_tick_reg"} {
			iface.SetInitial(r, "'0'")
		}
		b.Add("ClockBus <= not(GlobalClock) & GlobalClock & s_neg_edge_tick_reg & s_pos_edge_tick_reg &")
		b.Add("            not(s_derived_clock_reg) & s_derived_clock_reg;")
		b.Empty()
		b.Add("s_counter_is_zero <= '1' when unsigned(s_counter_reg) = 0 else '0';")
		b.Add("s_counter_next    <= std_logic_vector(unsigned(s_counter_reg) - 1) when s_counter_is_zero = '0' else")
		b.Add("                     std_logic_vector(to_unsigned(LowTicks-1, NrOfBits)) when s_derived_clock_reg = '1' else")
		b.Add("                     std_logic_vector(to_unsigned(HighTicks-1, NrOfBits));")
		b.Empty()
		b.Add("make_derived_clock : process(GlobalClock)")
		b.Add("begin")
		b.Indent().Add("if rising_edge(GlobalClock) then").Indent()
		b.Add("s_pos_edge_tick_reg <= ClockTick and s_counter_is_zero and not(s_derived_clock_reg);")
		b.Add("s_neg_edge_tick_reg <= ClockTick and s_counter_is_zero and s_derived_clock_reg;")
		b.Add("if (ClockTick = '1') then").Indent()
		b.Add("s_counter_reg <= s_counter_next;")
		b.Add("if (s_counter_is_zero = '1') then")
		b.Indent().Add("s_derived_clock_reg <= not(s_derived_clock_reg);").Dedent()
		b.Add("end if;").Dedent()
		b.Add("end if;").Dedent()
		b.Add("end if;").Dedent()
		b.Add("end process make_derived_clock;")
	} else {
		iface.SetInitial("s_counter_reg", "Phase")
		for _, r := range []string{"s_derived_clock_reg", "s_pos_edge_tick_reg", "s_neg_edge_tick_reg"} {
			iface.SetInitial(r, "1'b0")
		}
		b.Add("assign ClockBus = {~GlobalClock, GlobalClock, s_neg_edge_tick_reg, s_pos_edge_tick_reg,")
		b.Add("                   ~s_derived_clock_reg, s_derived_clock_reg};")
		b.Empty()
		b.Add("assign s_counter_is_zero = (s_counter_reg == 0) ? 1'b1 : 1'b0;")
		b.Add("assign s_counter_next    = (~s_counter_is_zero) ? s_counter_reg - 1 :")
		b.Add("                           s_derived_clock_reg ? LowTicks - 1 : HighTicks - 1;")
		b.Empty()
		b.Add("always @(posedge GlobalClock)")
		b.Add("begin").Indent()
		b.Add("s_pos_edge_tick_reg <= ClockTick & s_counter_is_zero & ~s_derived_clock_reg;")
		b.Add("s_neg_edge_tick_reg <= ClockTick & s_counter_is_zero & s_derived_clock_reg;")
		b.Add("if (ClockTick)")
		b.Add("begin").Indent()
		b.Add("s_counter_reg <= s_counter_next;")
		b.Add("if (s_counter_is_zero) s_derived_clock_reg <= ~s_derived_clock_reg;").Dedent()
		b.Add("end").Dedent()
		b.Add("end")
	}
	return build(lang, SourceModule, iface, b.Lines(), []string{"Clock source, divided"})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// SourceModel is a cycle model of the generated clock source registers.
type SourceModel struct {
	src     Source
	mask    uint64
	counter uint64
	derived bool
	pos     bool
	neg     bool
}

func NewSourceModel(src Source) *SourceModel {
	return &SourceModel{
		src:     src,
		mask:    uint64(1)<<uint(src.Bits()) - 1,
		counter: uint64(src.Phase) & (uint64(1)<<uint(src.Bits()) - 1),
	}
}

// Step applies one rising oscillator edge with the given tick input.
func (m *SourceModel) Step(tick bool) {
	zero := m.counter == 0
	m.pos = tick && zero && !m.derived
	m.neg = tick && zero && m.derived
	if !tick {
		return
	}
	switch {
	case !zero:
		m.counter = (m.counter - 1) & m.mask
	case m.derived:
		m.counter = uint64(m.src.LowTicks-1) & m.mask
	default:
		m.counter = uint64(m.src.HighTicks-1) & m.mask
	}
	if zero {
		m.derived = !m.derived
	}
}

// Bus returns the clock bus for the current oscillator level.
func (m *SourceModel) Bus(oscillator bool) [BusWidth]bool {
	return [BusWidth]bool{
		DerivedClock:         m.derived,
		InvertedDerivedClock: !m.derived,
		PositiveEdgeTick:     m.pos,
		NegativeEdgeTick:     m.neg,
		GlobalClock:          oscillator,
		InvertedGlobalClock:  !oscillator,
	}
}
