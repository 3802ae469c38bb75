// Package components holds one generator per leaf component kind. Each
// generator declares the module's interface and behavior and tells the
// circuit orchestrator how an instance is parameterized and connected.
package components

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/naming"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// Hidden port names carry FPGA-mapped I/O that is not a circuit pin.
const (
	HiddenInput  = "LOGISIM_HIDDEN_FPGA_INPUT"
	HiddenOutput = "LOGISIM_HIDDEN_FPGA_OUTPUT"
	HiddenInOut  = "LOGISIM_HIDDEN_FPGA_INOUT"

	// ClockEnd is the netlist end of a clocked component's clock input.
	ClockEnd = "Clock"
	// ClockBusPort receives the six-signal clock bus.
	ClockBusPort = "ClockBus"
)

// PortSpec describes one connectable port of a generated module.
type PortSpec struct {
	// Name is the HDL port name.
	Name string
	// End is the netlist end feeding the port; empty means Name.
	End      string
	Required bool
	// Default is the bit replicated into an unconnected optional input.
	Default int
	// Clock marks the clock bus port fed from a clock net.
	Clock bool
}

// EndName is the netlist end this port binds to.
func (p PortSpec) EndName() string {
	if p.End != "" {
		return p.End
	}
	return p.Name
}

// Bubbles counts the hidden FPGA bits a component exposes.
type Bubbles struct {
	Inputs  int `json:"inputs"`
	Outputs int `json:"outputs"`
	InOuts  int `json:"inouts"`
}

func (b Bubbles) Add(o Bubbles) Bubbles {
	return Bubbles{Inputs: b.Inputs + o.Inputs, Outputs: b.Outputs + o.Outputs, InOuts: b.InOuts + o.InOuts}
}

func (b Bubbles) Empty() bool {
	return b.Inputs == 0 && b.Outputs == 0 && b.InOuts == 0
}

// Declare adds the hidden ports to iface.
func (b Bubbles) Declare(iface *hdl.Interface) {
	if b.Inputs > 0 {
		iface.Inputs.Add(HiddenInput, b.Inputs)
	}
	if b.Outputs > 0 {
		iface.Outputs.Add(HiddenOutput, b.Outputs)
	}
	if b.InOuts > 0 {
		iface.InOuts.Add(HiddenInOut, b.InOuts)
	}
}

// Generator is the per-kind contract.
type Generator struct {
	// Category is the output subdirectory.
	Category string
	// Template returns the default module name template.
	Template func(c *netlist.Component) string
	// LabelSpecific marks kinds whose text depends on the instance itself.
	LabelSpecific bool
	Clocked       bool
	// Shape lists the attributes that change the generated text; two
	// instances with equal shape share one module.
	Shape     func(c *netlist.Component) string
	Interface func(ctx Context, c *netlist.Component) (hdl.Interface, error)
	Behavior  func(ctx Context, c *netlist.Component, iface hdl.Interface) ([]string, error)
	// Params maps generic ids, derived ones included, to instance values.
	Params  func(c *netlist.Component) map[int]int
	Ports   func(c *netlist.Component) []PortSpec
	Inits   func(ctx Context, c *netlist.Component) ([]emit.File, error)
	Bubbles func(c *netlist.Component) Bubbles
}

// Special kinds are wired by the circuit orchestrator itself.
var special = map[netlist.Kind]bool{
	netlist.KindPin:        true,
	netlist.KindClock:      true,
	netlist.KindDynClock:   true,
	netlist.KindConstant:   true,
	netlist.KindSubcircuit: true,
}

// IsSpecial reports whether kind has no generator of its own.
func IsSpecial(kind netlist.Kind) bool {
	return special[kind]
}

// Lookup returns the generator of kind.
func Lookup(kind netlist.Kind) (*Generator, error) {
	g, ok := table[kind]
	if !ok {
		return nil, fmt.Errorf("no HDL generator for component kind %q", kind)
	}
	return g, nil
}

// Width is the bit width attribute, defaulting to 1.
func Width(c *netlist.Component) int {
	return max(c.Attrs.Int("width", 1), 1)
}

func trigger(c *netlist.Component) string {
	return c.Attrs.String("trigger", "rising")
}

// BaseName expands the module template of c before collision handling.
func BaseName(ctx Context, c *netlist.Component) (string, naming.Issue, error) {
	g, err := Lookup(c.Kind)
	if err != nil {
		return "", "", err
	}
	template := g.Template(c)
	if t, ok := ctx.Templates[c.Kind]; ok && t != "" {
		template = t
	}
	name, issue := naming.Expand(template, naming.Vars{
		Circuit: ctx.CircuitName(),
		Label:   c.Label(),
		Width:   Width(c),
		Trigger: trigger(c),
	}, g.LabelSpecific)
	return name, issue, nil
}

// Signature identifies the module variant of c across the design.
func Signature(ctx Context, c *netlist.Component, base string) string {
	g, err := Lookup(c.Kind)
	if err != nil {
		return string(c.Kind) + "|" + base
	}
	sig := string(c.Kind) + "|" + base + "|" + g.Shape(c)
	if g.LabelSpecific {
		sig += "|" + ctx.CircuitName() + "|" + canonicalAttrs(c.Attrs)
	}
	return sig
}

func canonicalAttrs(a netlist.Attributes) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%q;", k, a[k])
	}
	return sb.String()
}

// ModuleName is the planned module name of c in the context circuit.
func ModuleName(ctx Context, c *netlist.Component) (string, error) {
	if ctx.Names != nil {
		if name, ok := ctx.Names.Module(ctx.CircuitName(), c.ID); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%s in circuit %s has no planned module name", c, ctx.CircuitName())
}

// Generate produces the module of c.
func Generate(ctx Context, c *netlist.Component) (emit.Module, error) {
	g, err := Lookup(c.Kind)
	if err != nil {
		return emit.Module{}, report.AsFatal("", err)
	}
	name, err := ModuleName(ctx, c)
	if err != nil {
		return emit.Module{}, report.AsFatal("", err)
	}
	if c.Kind == netlist.KindHDL {
		return verbatimModule(ctx, c, name, g)
	}
	iface, err := g.Interface(ctx, c)
	if err != nil {
		return emit.Module{}, report.AsFatal(name, err)
	}
	body, err := g.Behavior(ctx, c, iface)
	if err != nil {
		return emit.Module{}, report.AsFatal(name, err)
	}
	if len(body) == 0 {
		return emit.Module{}, report.Fatalf(name, "generated body is empty")
	}
	var extras []emit.File
	if g.Inits != nil {
		if extras, err = g.Inits(ctx, c); err != nil {
			return emit.Module{}, report.AsFatal(name, err)
		}
	}
	doc := []string{"Kind      : " + string(c.Kind)}
	m := emit.Module{Name: name, Subdir: g.Category, Extras: extras}
	if ctx.Lang == hdl.VHDL {
		m.Entity = hdl.Entity(name, iface, doc...)
		m.Behavior = hdl.Architecture(name, iface, nil, body, doc...)
	} else {
		m.Behavior = hdl.Module(name, iface, body, doc...)
	}
	return m, nil
}

// PortBinding pairs a port with the netlist end that feeds it.
type PortBinding struct {
	Spec PortSpec
	End  netlist.ConnectionEnd
	// Width is the resolved width of the HDL port.
	Width     int
	Direction string
}

// Binding is everything the orchestrator needs to instantiate c.
type Binding struct {
	Module    string
	Interface hdl.Interface
	Generics  []hdl.Assoc
	Ports     []PortBinding
	Bubbles   Bubbles
}

// Bind resolves the module, generic values and port widths of one
// instance. A connected end whose width differs from its port is fatal.
func Bind(ctx Context, c *netlist.Component) (Binding, error) {
	g, err := Lookup(c.Kind)
	if err != nil {
		return Binding{}, report.AsFatal("", err)
	}
	name, err := ModuleName(ctx, c)
	if err != nil {
		return Binding{}, report.AsFatal("", err)
	}
	iface, err := g.Interface(ctx, c)
	if err != nil {
		return Binding{}, report.AsFatal(name, err)
	}
	params := map[int]int{}
	if g.Params != nil {
		params = g.Params(c)
	}
	b := Binding{Module: name, Interface: iface}
	for _, id := range iface.Generics.Real() {
		gname, _ := iface.Generics.Name(id)
		v, ok := params[id]
		if !ok {
			return Binding{}, report.Fatalf(name, "%s: no value for generic %s", c, gname)
		}
		b.Generics = append(b.Generics, hdl.Assoc{Formal: gname, Actual: strconv.Itoa(v)})
	}
	for _, spec := range g.Ports(c) {
		width, ok := iface.PortWidth(spec.Name, params)
		if !ok {
			return Binding{}, report.Fatalf(name, "%s: port %s has no resolvable width", c, spec.Name)
		}
		end, found := c.End(spec.EndName())
		if spec.Clock {
			if !found {
				end = netlist.ConnectionEnd{Name: spec.EndName(), Points: []netlist.ConnectionPoint{netlist.Unconnected}}
			}
			if end.Width() != 1 {
				return Binding{}, report.Fatalf(name, "%s: clock input is %d bits wide", c, end.Width())
			}
		} else {
			if !found {
				end = floating(spec.EndName(), width)
			}
			if end.Width() != width {
				return Binding{}, report.Fatalf(name, "%s: end %s has %d bits but port %s is %d bits wide",
					c, end.Name, end.Width(), spec.Name, width)
			}
		}
		b.Ports = append(b.Ports, PortBinding{Spec: spec, End: end, Width: width, Direction: iface.Direction(spec.Name)})
	}
	if g.Bubbles != nil {
		b.Bubbles = g.Bubbles(c)
	}
	return b, nil
}

func floating(name string, width int) netlist.ConnectionEnd {
	points := make([]netlist.ConnectionPoint, width)
	for i := range points {
		points[i] = netlist.Unconnected
	}
	return netlist.ConnectionEnd{Name: name, Points: points}
}

// BubblesOf returns the hidden bits of a leaf component.
func BubblesOf(c *netlist.Component) Bubbles {
	g, err := Lookup(c.Kind)
	if err != nil || g.Bubbles == nil {
		return Bubbles{}
	}
	return g.Bubbles(c)
}

// IsClocked reports whether c takes the clock bus.
func IsClocked(c *netlist.Component) bool {
	g, err := Lookup(c.Kind)
	return err == nil && g.Clocked
}

// clockEnable is the clock bus bit enabling a component with trigger t.
func clockEnable(lang hdl.Language, t string) string {
	return lang.Index(ClockBusPort, clock.TriggerIndex(t))
}

// globalClock is the raw oscillator bit of the clock bus.
func globalClock(lang hdl.Language) string {
	return lang.Index(ClockBusPort, clock.GlobalClock)
}

func busShape(c *netlist.Component) string {
	return fmt.Sprintf("bus=%t", Width(c) > 1)
}
