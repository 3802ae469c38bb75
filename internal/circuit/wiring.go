package circuit

import (
	"fmt"
	"sort"

	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// wiring accumulates the body of one circuit module.
type wiring struct {
	ctx     components.Context
	lang    hdl.Language
	circ    *netlist.Circuit
	module  string
	layouts map[string]Layout
	iface   *hdl.Interface
	b       *hdl.Builder

	decls    [][]string
	declared map[string]bool
}

func (w *wiring) assign(dst, src string) {
	w.b.Text(w.lang.Assign(dst, src))
}

// section runs fill and titles whatever it added.
func (w *wiring) section(title string, fill func() error) error {
	outer := w.b
	w.b = hdl.NewBuilder(w.lang)
	err := fill()
	inner := w.b
	w.b = outer
	if err != nil || inner.Len() == 0 {
		return err
	}
	if w.b.Len() > 0 {
		w.b.Empty()
	}
	w.b.Comment("%s", title)
	w.b.AddLines(inner.Lines()...)
	return nil
}

// Module generates the module of the circuit ctx is scoped to. Any fatal
// condition discards the whole module.
func Module(ctx components.Context, layouts map[string]Layout) (emit.Module, error) {
	c := ctx.Circuit
	module, ok := ctx.Names.Circuit(c.Name)
	if !ok {
		return emit.Module{}, report.Fatalf(c.Name, "circuit has no planned module name")
	}
	iface, err := Interface(ctx, layouts)
	if err != nil {
		return emit.Module{}, report.AsFatal(module, err)
	}
	for i := range c.Nets {
		iface.Wires.Add(NetSignal(&c.Nets[i]), c.Nets[i].Width)
	}
	w := &wiring{
		ctx:      ctx,
		lang:     ctx.Lang,
		circ:     c,
		module:   module,
		layouts:  layouts,
		iface:    &iface,
		b:        hdl.NewBuilder(ctx.Lang),
		declared: map[string]bool{},
	}
	steps := []struct {
		title string
		fill  func() error
	}{
		{"Clock sources", w.clockSources},
		{"Dynamic clock control", w.dynamicClock},
		{"Constants", w.constants},
		{"Input and output pins", w.pins},
		{"Explicit net connections", w.forcedRoots},
		{"Components", w.instances},
	}
	for _, s := range steps {
		if err := w.section(s.title, s.fill); err != nil {
			return emit.Module{}, report.AsFatal(module, err)
		}
	}
	if w.b.Len() == 0 {
		return emit.Module{}, report.Fatalf(module, "generated body is empty")
	}
	doc := []string{"Kind      : circuit", "Circuit   : " + c.Name}
	m := emit.Module{Name: module, Subdir: category}
	if ctx.Lang == hdl.VHDL {
		m.Entity = hdl.Entity(module, iface, doc...)
		m.Behavior = hdl.Architecture(module, iface, w.decls, w.b.Lines(), doc...)
	} else {
		m.Behavior = hdl.Module(module, iface, w.b.Lines(), doc...)
	}
	return m, nil
}

func (w *wiring) warn(format string, args ...any) {
	w.ctx.Sink.Warn(w.circ.Name, w.module, format, args...)
}

func (w *wiring) severe(format string, args ...any) {
	w.ctx.Sink.Severe(w.circ.Name, w.module, format, args...)
}

// clockSources drive each clock component's net with the derived clock
// of its tree.
func (w *wiring) clockSources() error {
	for _, comp := range w.circ.ComponentsOf(netlist.KindClock) {
		if len(comp.Ends) == 0 {
			continue
		}
		for _, r := range Runs(comp.Ends[0].Points) {
			if r.Gap() {
				continue
			}
			n, _ := w.circ.Net(r.Net)
			if n.ClockTree == nil {
				w.severe("%s drives net %d outside any clock tree, net tied to 0", comp, n.ID)
				w.assign(netRef(w.lang, w.circ, r), w.lang.Fill(0, r.Width()))
				continue
			}
			w.assign(netRef(w.lang, w.circ, r), w.lang.Index(ClockTreePort(*n.ClockTree), clock.DerivedClock))
		}
	}
	return nil
}

func (w *wiring) dynamicClock() error {
	active := DynamicClock(w.ctx)
	for _, dyn := range w.circ.ComponentsOf(netlist.KindDynClock) {
		if dyn != active {
			w.warn("%s only sets the clock speed in the top circuit with a dynamic tick period, ignored", dyn)
			continue
		}
		width := components.Width(dyn)
		points := floating(width)
		if e, ok := dyn.End("Value"); ok && e.Width() == width {
			points = e.Points
		}
		for _, r := range Runs(points) {
			dst := ref(w.lang, DynamicClockPort, width, r.Hi, r.Lo)
			if r.Gap() {
				w.assign(dst, w.lang.Fill(0, r.Width()))
				continue
			}
			w.assign(dst, netRef(w.lang, w.circ, r))
		}
	}
	return nil
}

func (w *wiring) constants() error {
	for _, comp := range w.circ.ComponentsOf(netlist.KindConstant) {
		value := uint64(comp.Attrs.Int("value", 0))
		for _, e := range comp.Ends {
			for _, r := range Runs(e.Points) {
				if r.Gap() {
					continue
				}
				w.assign(netRef(w.lang, w.circ, r), w.lang.Literal(value>>uint(r.Lo), r.Width()))
			}
		}
	}
	return nil
}

// pins connect ports and nets. Undriven output bits are reported, one
// warning per gap.
func (w *wiring) pins() error {
	for _, pin := range w.circ.ComponentsOf(netlist.KindPin) {
		port, _ := w.ctx.Names.Port(w.circ.Name, pin.PathName())
		width := PinWidth(pin)
		points := floating(width)
		if len(pin.Ends) > 0 {
			points = pin.Ends[0].Points
		}
		for _, r := range Runs(points) {
			p := ref(w.lang, port, width, r.Hi, r.Lo)
			switch {
			case r.Gap() && IsOutputPin(pin):
				w.warn("output pin %s: %s not driven", port, r.Bits())
			case r.Gap():
			case IsOutputPin(pin):
				w.assign(p, netRef(w.lang, w.circ, r))
			default:
				w.assign(netRef(w.lang, w.circ, r), p)
			}
		}
	}
	return nil
}

// forcedRoots copy the drivers of explicit nets into their signal, and
// the signal into every net it feeds.
func (w *wiring) forcedRoots() error {
	for i := range w.circ.Nets {
		n := &w.circ.Nets[i]
		if !n.ForcedRoot {
			continue
		}
		for _, r := range Runs(n.Sources) {
			if r.Gap() {
				continue
			}
			w.assign(ref(w.lang, NetSignal(n), n.Width, r.Hi, r.Lo), netRef(w.lang, w.circ, r))
		}

		targets := map[int][]netlist.ConnectionPoint{}
		for bit, sinks := range n.Sinks {
			for _, p := range sinks {
				if !p.Connected() || p.Net == n.ID {
					continue
				}
				arr, ok := targets[p.Net]
				if !ok {
					t, _ := w.circ.Net(p.Net)
					arr = floating(t.Width)
					targets[p.Net] = arr
				}
				if !arr[p.Bit].Connected() {
					arr[p.Bit] = netlist.ConnectionPoint{Net: n.ID, Bit: bit}
				}
			}
		}
		ids := make([]int, 0, len(targets))
		for id := range targets {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			t, _ := w.circ.Net(id)
			for _, r := range Runs(targets[id]) {
				if r.Gap() {
					continue
				}
				w.assign(ref(w.lang, NetSignal(t), t.Width, r.Hi, r.Lo), netRef(w.lang, w.circ, r))
			}
		}
	}
	return nil
}

func (w *wiring) instances() error {
	for _, comp := range w.circ.Components {
		var err error
		switch {
		case comp.Kind == netlist.KindSubcircuit:
			err = w.subcircuit(comp)
		case components.IsSpecial(comp.Kind):
			continue
		default:
			err = w.leaf(comp)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *wiring) label(comp *netlist.Component) (string, error) {
	label, ok := w.ctx.Names.Instance(w.circ.Name, comp.ID)
	if !ok {
		return "", fmt.Errorf("%s has no planned instance label", comp)
	}
	return label, nil
}

func (w *wiring) leaf(comp *netlist.Component) error {
	label, err := w.label(comp)
	if err != nil {
		return err
	}
	b, err := components.Bind(w.ctx, comp)
	if err != nil {
		return report.Fatalf(w.module, "instance %s: %v", label, err)
	}
	if w.b.Len() > 0 {
		w.b.Empty()
	}
	inst := hdl.Instance{Label: label, Module: b.Module, Generics: b.Generics}
	for _, pb := range b.Ports {
		var actual string
		if pb.Spec.Clock {
			actual = w.clockBus(comp, label, pb.End.Points[0])
		} else {
			actual, err = w.mapPort(label, pb.Spec.Name, pb.Direction, pb.Width, pb.End.Points, pb.Spec.Default, pb.Spec.Required)
			if err != nil {
				return report.AsFatal(w.module, fmt.Errorf("%s: %w", comp, err))
			}
		}
		inst.Ports = append(inst.Ports, hdl.Assoc{Formal: pb.Spec.Name, Actual: actual})
	}
	inst.Ports = append(inst.Ports, w.hidden(comp.ID)...)
	w.declare(b.Module, b.Interface)
	w.b.AddLines(w.lang.Instantiate(inst)...)
	return nil
}

// subcircuit matches the component's ends to the inner pins by path name.
func (w *wiring) subcircuit(comp *netlist.Component) error {
	label, err := w.label(comp)
	if err != nil {
		return err
	}
	sub, _ := w.ctx.Design.Circuit(comp.Circuit)
	module, ok := w.ctx.Names.Circuit(sub.Name)
	if !ok {
		return fmt.Errorf("circuit %s has no planned module name", sub.Name)
	}
	subIface, err := Interface(w.ctx.WithCircuit(sub), w.layouts)
	if err != nil {
		return err
	}
	if w.b.Len() > 0 {
		w.b.Empty()
	}
	inst := hdl.Instance{Label: label, Module: module}
	for _, id := range w.ctx.Design.ClockTreeIDs() {
		inst.Ports = append(inst.Ports, hdl.Assoc{Formal: ClockTreePort(id), Actual: ClockTreePort(id)})
	}
	inst.Ports = append(inst.Ports, w.hidden(comp.ID)...)

	matched := map[string]bool{}
	for _, pin := range sub.ComponentsOf(netlist.KindPin) {
		port, _ := w.ctx.Names.Port(sub.Name, pin.PathName())
		width := PinWidth(pin)
		dir := "in"
		if IsOutputPin(pin) {
			dir = "out"
		}
		points := floating(width)
		if e, ok := comp.End(pin.PathName()); ok {
			if e.Width() != width {
				return fmt.Errorf("%s: end %s has %d bits but pin %s of %s is %d bits wide", comp, e.Name, e.Width(), port, sub.Name, width)
			}
			points = e.Points
			matched[e.Name] = true
		}
		actual, err := w.mapPort(label, port, dir, width, points, 0, false)
		if err != nil {
			return fmt.Errorf("%s: %w", comp, err)
		}
		inst.Ports = append(inst.Ports, hdl.Assoc{Formal: port, Actual: actual})
	}
	for _, e := range comp.Ends {
		if !matched[e.Name] {
			w.warn("%s: end %s matches no pin of circuit %s", comp, e.Name, sub.Name)
		}
	}
	w.declare(module, subIface)
	w.b.AddLines(w.lang.Instantiate(inst)...)
	return nil
}

// mapPort returns the actual of one port. A port fed by one run maps to
// the net directly; a fully unconnected input takes its default and an
// unconnected output stays open. Anything else goes through a wire with
// one assignment per run; a required input may not have unconnected bits.
func (w *wiring) mapPort(label, port, dir string, width int, points []netlist.ConnectionPoint, def int, required bool) (string, error) {
	runs := Runs(points)
	if len(runs) == 1 && !runs[0].Gap() {
		return netRef(w.lang, w.circ, runs[0]), nil
	}
	if len(runs) <= 1 {
		if dir != "in" {
			return "", nil
		}
		if required {
			return "", fmt.Errorf("required input %s is not connected", port)
		}
		return w.lang.Fill(def, width), nil
	}
	if dir == "inout" {
		return "", fmt.Errorf("inout %s must connect to a single net range", port)
	}
	if required && dir == "in" {
		for _, r := range runs {
			if r.Gap() {
				return "", fmt.Errorf("required input %s is not connected at %s", port, r.Bits())
			}
		}
	}
	wire := fmt.Sprintf("s_%s_%s", label, port)
	w.iface.Wires.Add(wire, width)
	for _, r := range runs {
		dst := ref(w.lang, wire, width, r.Hi, r.Lo)
		switch {
		case dir == "in" && r.Gap():
			w.assign(dst, w.lang.Fill(def, r.Width()))
		case dir == "in":
			w.assign(dst, netRef(w.lang, w.circ, r))
		case !r.Gap():
			w.assign(netRef(w.lang, w.circ, r), dst)
		}
	}
	return wire, nil
}

// clockBus is the clock bus actual of a clocked component. A clock net
// outside every clock tree gets a locally built bus: the raw signal acts
// as both the oscillator and the derived clock, with ticks held high.
func (w *wiring) clockBus(comp *netlist.Component, label string, p netlist.ConnectionPoint) string {
	if !p.Connected() {
		w.severe("%s has no clock connection, clock tied to 0", comp)
		return w.lang.Zeros(clock.BusWidth)
	}
	n, _ := w.circ.Net(p.Net)
	if n.ClockTree != nil {
		return ClockTreePort(*n.ClockTree)
	}
	w.severe("%s is clocked by net %d which is not driven by a clock component (gated clock)", comp, n.ID)
	g := ref(w.lang, NetSignal(n), n.Width, p.Bit, p.Bit)
	edge := g
	if comp.Attrs.String("trigger", "rising") == "falling" {
		edge = w.lang.Not(g)
	}
	wire := fmt.Sprintf("s_%s_%s", label, components.ClockBusPort)
	w.iface.Wires.Add(wire, clock.BusWidth)
	w.assign(wire, w.lang.Concat(w.lang.Not(edge), edge, w.lang.Bit(1), w.lang.Bit(1), w.lang.Not(g), g))
	return wire
}

// hidden maps a component's share of this circuit's hidden ports.
func (w *wiring) hidden(id int) []hdl.Assoc {
	l := w.layouts[w.circ.Name]
	size, ok := l.Sizes[id]
	if !ok {
		return nil
	}
	off := l.Offsets[id]
	var out []hdl.Assoc
	add := func(port string, n, at, total int) {
		if n > 0 {
			out = append(out, hdl.Assoc{Formal: port, Actual: ref(w.lang, port, total, at+n-1, at)})
		}
	}
	add(components.HiddenInput, size.Inputs, off.Inputs, l.Total.Inputs)
	add(components.HiddenOutput, size.Outputs, off.Outputs, l.Total.Outputs)
	add(components.HiddenInOut, size.InOuts, off.InOuts, l.Total.InOuts)
	return out
}

// declare records the VHDL component declaration of module once.
func (w *wiring) declare(module string, iface hdl.Interface) {
	if w.lang != hdl.VHDL || w.declared[module] {
		return
	}
	w.declared[module] = true
	w.decls = append(w.decls, hdl.Component(module, iface))
}

func floating(width int) []netlist.ConnectionPoint {
	points := make([]netlist.ConnectionPoint, width)
	for i := range points {
		points[i] = netlist.Unconnected
	}
	return points
}
