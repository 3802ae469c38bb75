// Package toplevel wraps the top circuit in a module whose only ports are
// physical FPGA pins and the board oscillator.
package toplevel

import (
	"fmt"

	"github.com/robert-at-pretension-io/hdlgen/internal/board"
	"github.com/robert-at-pretension-io/hdlgen/internal/circuit"
	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

const (
	// GlobalClockPort is the board oscillator input.
	GlobalClockPort = "FPGA_GlobalClock"
	Category        = "toplevel"

	tickWire   = "s_" + circuit.TickSignal
	tickLabel  = "TICK_GENERATOR"
	dutLabel   = "CircuitUnderTest"
	sourceName = "CLOCK_SOURCE_"
)

var pinPrefix = map[string]string{
	"in":    "FPGA_INPUT_PIN_",
	"out":   "FPGA_OUTPUT_PIN_",
	"inout": "FPGA_INOUT_PIN_",
}

// Pin is one numbered FPGA port and the board pin it is placed on.
type Pin struct {
	Port      string
	Pin       string
	Direction string
	// Source names the design bit behind the port.
	Source string
}

// Options configure the wrapper of one design.
type Options struct {
	Tick clock.TickConfig
	// Board may be nil, leaving every bit unmapped.
	Board *board.Board
}

// Wrapper is the generated top level.
type Wrapper struct {
	Module emit.Module
	Pins   []Pin
}

type wrapper struct {
	ctx   components.Context
	lang  hdl.Language
	board *board.Board
	iface hdl.Interface
	b     *hdl.Builder
	pins  []Pin
	count map[string]int
}

// Generate builds the wrapper around the top circuit of ctx. Inputs that
// the board leaves unmapped are tied to 0 with a warning; hidden inout
// bits must all be placed on pins.
func Generate(ctx components.Context, layouts map[string]circuit.Layout, opts Options) (Wrapper, error) {
	top := ctx.Design.TopCircuit()
	if top == nil {
		return Wrapper{}, report.Fatalf(circuit.WrapperModule, "design has no top circuit")
	}
	ctx = ctx.WithCircuit(top)
	module, ok := ctx.Names.Circuit(top.Name)
	if !ok {
		return Wrapper{}, report.Fatalf(circuit.WrapperModule, "top circuit %s has no planned module name", top.Name)
	}
	dutIface, err := circuit.Interface(ctx, layouts)
	if err != nil {
		return Wrapper{}, report.AsFatal(circuit.WrapperModule, err)
	}
	w := &wrapper{
		ctx:   ctx,
		lang:  ctx.Lang,
		board: opts.Board,
		b:     hdl.NewBuilder(ctx.Lang),
		count: map[string]int{},
	}
	dut := hdl.Instance{Label: dutLabel, Module: module}
	var decls [][]string

	if trees := ctx.Design.ClockTreeIDs(); len(trees) > 0 {
		w.iface.Inputs.Add(GlobalClockPort, 1)
		w.iface.Wires.Add(tickWire, 1)
		w.b.Comment("Clock generation")
		tick := hdl.Instance{
			Label:    tickLabel,
			Module:   clock.TickModule,
			Generics: clock.TickParams(opts.Tick),
			Ports: []hdl.Assoc{
				{Formal: clock.TickClockPort, Actual: GlobalClockPort},
				{Formal: clock.TickOutPort, Actual: tickWire},
			},
		}
		if dyn := circuit.DynamicClock(ctx); dyn != nil && opts.Tick.Mode == clock.Dynamic {
			wire := "s_" + circuit.DynamicClockPort
			w.iface.Wires.Add(wire, components.Width(dyn))
			tick.Ports = append(tick.Ports, hdl.Assoc{Formal: clock.TickReloadPort, Actual: wire})
			dut.Ports = append(dut.Ports, hdl.Assoc{Formal: circuit.DynamicClockPort, Actual: wire})
		}
		w.b.AddLines(w.lang.Instantiate(tick)...)
		decls = append(decls, hdl.Component(clock.TickModule, clock.TickInterface(opts.Tick)))
		for _, id := range trees {
			ct, _ := ctx.Design.ClockTree(id)
			src := clock.Source{HighTicks: ct.HighTicks, LowTicks: ct.LowTicks, Phase: ct.Phase}
			wire := "s_" + circuit.ClockTreePort(id)
			w.iface.Wires.Add(wire, clock.BusWidth)
			w.b.Empty()
			w.b.AddLines(w.lang.Instantiate(hdl.Instance{
				Label:    fmt.Sprintf("%s%d", sourceName, id),
				Module:   clock.SourceModule,
				Generics: src.Params(),
				Ports: []hdl.Assoc{
					{Formal: clock.SourceClockPort, Actual: GlobalClockPort},
					{Formal: clock.SourceTickPort, Actual: tickWire},
					{Formal: clock.SourceBusPort, Actual: wire},
				},
			})...)
			dut.Ports = append(dut.Ports, hdl.Assoc{Formal: circuit.ClockTreePort(id), Actual: wire})
		}
		decls = append(decls, hdl.Component(clock.SourceModule, clock.SourceInterface(opts.Tick.Mode == clock.Raw)))
	}

	in, out := hdl.NewBuilder(w.lang), hdl.NewBuilder(w.lang)
	total := layouts[top.Name].Total
	hiddenIn, hiddenOut := "s_"+components.HiddenInput, "s_"+components.HiddenOutput
	if total.Inputs > 0 {
		w.iface.Wires.Add(hiddenIn, total.Inputs)
		dut.Ports = append(dut.Ports, hdl.Assoc{Formal: components.HiddenInput, Actual: hiddenIn})
	}
	if total.Outputs > 0 {
		w.iface.Wires.Add(hiddenOut, total.Outputs)
		dut.Ports = append(dut.Ports, hdl.Assoc{Formal: components.HiddenOutput, Actual: hiddenOut})
	}
	inouts := make([]string, total.InOuts)
	for _, hb := range circuit.HiddenBits(ctx.Design, layouts) {
		bit := w.board.BitAt(hb.Path, hb.Bit)
		source := fmt.Sprintf("%s bit %d", hb.Path, hb.Bit)
		switch hb.Direction {
		case circuit.HiddenIn:
			w.drive(in, index(w.lang, hiddenIn, total.Inputs, hb.Index), bit, source)
		case circuit.HiddenOut:
			if err := w.sample(out, index(w.lang, hiddenOut, total.Outputs, hb.Index), bit, source); err != nil {
				return Wrapper{}, err
			}
		default:
			if bit.Kind() != board.PinBit || bit.Inverted {
				return Wrapper{}, report.Fatalf(circuit.WrapperModule, "inout %s must be mapped to a non-inverted board pin", source)
			}
			inouts[hb.Index] = w.fpgaPin("inout", bit, source)
		}
	}
	if total.InOuts > 0 {
		dut.Ports = append(dut.Ports, w.inoutAssocs(inouts)...)
	}

	for _, pin := range top.ComponentsOf(netlist.KindPin) {
		port, _ := ctx.Names.Port(top.Name, pin.PathName())
		width := circuit.PinWidth(pin)
		wire := "s_" + port
		w.iface.Wires.Add(wire, width)
		dut.Ports = append(dut.Ports, hdl.Assoc{Formal: port, Actual: wire})
		for i := 0; i < width; i++ {
			source := pin.PathName()
			if width > 1 {
				source = fmt.Sprintf("%s bit %d", source, i)
			}
			bit := w.board.BitAt(pin.PathName(), i)
			if !circuit.IsOutputPin(pin) {
				w.drive(in, index(w.lang, wire, width, i), bit, source)
				continue
			}
			if err := w.sample(out, index(w.lang, wire, width, i), bit, source); err != nil {
				return Wrapper{}, err
			}
		}
	}

	for _, part := range []struct {
		title string
		lines []string
	}{
		{"Input mappings", in.Lines()},
		{"Output mappings", out.Lines()},
	} {
		if len(part.lines) == 0 {
			continue
		}
		if w.b.Len() > 0 {
			w.b.Empty()
		}
		w.b.Comment("%s", part.title)
		w.b.AddLines(part.lines...)
	}
	if w.b.Len() > 0 {
		w.b.Empty()
	}
	w.b.Comment("Circuit under test")
	w.b.AddLines(w.lang.Instantiate(dut)...)
	decls = append(decls, hdl.Component(module, dutIface))

	doc := []string{"Kind      : FPGA top level", "Circuit   : " + top.Name}
	m := emit.Module{Name: circuit.WrapperModule, Subdir: Category}
	if w.lang == hdl.VHDL {
		m.Entity = hdl.Entity(m.Name, w.iface, doc...)
		m.Behavior = hdl.Architecture(m.Name, w.iface, decls, w.b.Lines(), doc...)
	} else {
		m.Behavior = hdl.Module(m.Name, w.iface, w.b.Lines(), doc...)
	}
	if opts.Board != nil {
		content, err := Constraints(ctx.Vendor, opts.Board, w.pins)
		if err != nil {
			return Wrapper{}, report.AsFatal(circuit.WrapperModule, err)
		}
		m.Extras = append(m.Extras, emit.File{Name: ConstraintFile(ctx.Vendor), Content: content})
	}
	return Wrapper{Module: m, Pins: w.pins}, nil
}

func (w *wrapper) warn(format string, args ...any) {
	w.ctx.Sink.Warn(w.ctx.Circuit.Name, circuit.WrapperModule, format, args...)
}

// fpgaPin declares the next numbered FPGA port of dir.
func (w *wrapper) fpgaPin(dir string, bit board.Bit, source string) string {
	name := fmt.Sprintf("%s%d", pinPrefix[dir], w.count[dir])
	w.count[dir]++
	switch dir {
	case "in":
		w.iface.Inputs.Add(name, 1)
	case "out":
		w.iface.Outputs.Add(name, 1)
	default:
		w.iface.InOuts.Add(name, 1)
	}
	w.pins = append(w.pins, Pin{Port: name, Pin: bit.Pin, Direction: dir, Source: source})
	return name
}

// drive assigns one design input bit from the board.
func (w *wrapper) drive(b *hdl.Builder, dst string, bit board.Bit, source string) {
	switch bit.Kind() {
	case board.PinBit:
		src := w.fpgaPin("in", bit, source)
		if bit.Inverted {
			src = w.lang.Not(src)
		}
		b.Text(w.lang.Assign(dst, src))
	case board.ConstantBit:
		v := bit.Value()
		if bit.Inverted {
			v ^= 1
		}
		b.Text(w.lang.Assign(dst, w.lang.Bit(v)))
	case board.OpenBit:
		b.Text(w.lang.Assign(dst, w.lang.Bit(0)))
	default:
		w.warn("input %s is not mapped to the board, tied to 0", source)
		b.Text(w.lang.Assign(dst, w.lang.Bit(0)))
	}
}

// sample routes one design output bit to the board. Open and unmapped
// outputs stay unassigned.
func (w *wrapper) sample(b *hdl.Builder, src string, bit board.Bit, source string) error {
	switch bit.Kind() {
	case board.PinBit:
		if bit.Inverted {
			src = w.lang.Not(src)
		}
		b.Text(w.lang.Assign(w.fpgaPin("out", bit, source), src))
	case board.ConstantBit:
		return report.Fatalf(circuit.WrapperModule, "output %s cannot be mapped to a constant", source)
	case board.OpenBit:
	default:
		w.warn("output %s is not mapped to the board, left open", source)
	}
	return nil
}

// inoutAssocs connects hidden inout bits straight to their pins: element
// associations in VHDL, a concatenation in Verilog.
func (w *wrapper) inoutAssocs(pins []string) []hdl.Assoc {
	if w.lang == hdl.Verilog {
		rev := make([]string, len(pins))
		for i, p := range pins {
			rev[len(pins)-1-i] = p
		}
		return []hdl.Assoc{{Formal: components.HiddenInOut, Actual: w.lang.Concat(rev...)}}
	}
	var out []hdl.Assoc
	for i, p := range pins {
		out = append(out, hdl.Assoc{Formal: index(w.lang, components.HiddenInOut, len(pins), i), Actual: p})
	}
	return out
}

func index(lang hdl.Language, name string, width, i int) string {
	if width == 1 {
		return name
	}
	return lang.Index(name, i)
}
