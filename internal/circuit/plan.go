// Package circuit generates one module per circuit of the hierarchy: its
// port list, the wiring between nets, pins and components, and the
// instantiation of every leaf component and subcircuit.
package circuit

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/naming"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

const (
	// WrapperModule is the FPGA top level around the design.
	WrapperModule = "FPGAToplevel"
	// DynamicClockPort carries the run-time clock divider of the top circuit.
	DynamicClockPort = "LOGISIM_DYNAMIC_CLOCK_OUT"
	// TickSignal is the tick the FPGA wrapper distributes to its clock
	// sources. Pins cannot take it as a port name.
	TickSignal = "FPGA_Tick"

	clockTreePrefix = "LOGISIM_CLOCK_TREE_"
	category        = "circuit"
)

// ReservedModules cannot be claimed by any component or circuit.
var ReservedModules = []string{WrapperModule, clock.TickModule, clock.SourceModule}

// ClockTreePort is the port carrying the clock bus of tree id.
func ClockTreePort(id int) string {
	return fmt.Sprintf("%s%d", clockTreePrefix, id)
}

// fixedPorts are claimed before any pin or instance label of a circuit.
func fixedPorts(d *netlist.Design) []string {
	names := []string{TickSignal, DynamicClockPort, components.HiddenInput, components.HiddenOutput, components.HiddenInOut}
	for _, id := range d.ClockTreeIDs() {
		names = append(names, ClockTreePort(id))
	}
	return names
}

// IsOutputPin reports whether a pin drives a port out of its circuit.
func IsOutputPin(pin *netlist.Component) bool {
	return pin.Attrs.Bool("output", false)
}

// PinWidth is the width of a pin's single end.
func PinWidth(pin *netlist.Component) int {
	if len(pin.Ends) > 0 && pin.Ends[0].Width() > 0 {
		return pin.Ends[0].Width()
	}
	return components.Width(pin)
}

// instancePrefix names instances by their category.
func instancePrefix(c *netlist.Component) string {
	if c.Kind == netlist.KindSubcircuit {
		return "CIRCUIT"
	}
	g, err := components.Lookup(c.Kind)
	if err != nil {
		return "COMPONENT"
	}
	return strings.ToUpper(g.Category)
}

// pinPort derives a port name from a pin path name. Labels starting with
// s_ are prefixed so they cannot clash with generated signal names.
func pinPort(pathName string) string {
	name := naming.Sanitize(pathName)
	if strings.HasPrefix(strings.ToLower(name), "s_") {
		name = "L_" + name
	}
	return name
}

// Plan assigns every identifier of the design before any text is
// generated: circuit and component module names, port names of pins and
// instance labels. Recoverable problems go to the sink; a name that
// cannot be assigned is fatal for its module only.
func Plan(ctx components.Context) (*components.Names, error) {
	names := components.NewNames()
	ctx.Names = names
	reg := naming.NewRegistry(ReservedModules...)
	top := ctx.Design.TopCircuit()
	if top == nil {
		return nil, fmt.Errorf("design %s has no top circuit", ctx.Design.Name)
	}

	visited := map[string]bool{}
	var visit func(c *netlist.Circuit) error
	visit = func(c *netlist.Circuit) error {
		if visited[c.Name] {
			return nil
		}
		visited[c.Name] = true
		cctx := ctx.WithCircuit(c)

		module, err := reg.Claim(naming.Sanitize(c.Name), "circuit|"+c.Name)
		if err != nil {
			return report.AsFatal(c.Name, err)
		}
		names.SetCircuit(c.Name, module)

		taken := map[string]bool{}
		for _, p := range fixedPorts(ctx.Design) {
			taken[strings.ToLower(p)] = true
		}
		pins := map[string]bool{}
		for _, pin := range c.ComponentsOf(netlist.KindPin) {
			path := pin.PathName()
			if pins[path] {
				return report.Fatalf(module, "two pins of circuit %s are named %q", c.Name, path)
			}
			pins[path] = true
			names.SetPort(c.Name, path, naming.Unique(taken, pinPort(path)))
		}
		if c.BlackBox != nil {
			return nil
		}

		for _, comp := range c.Components {
			if comp.Kind != netlist.KindSubcircuit && components.IsSpecial(comp.Kind) {
				continue
			}
			names.SetInstance(c.Name, comp.ID, naming.Unique(taken, fmt.Sprintf("%s_%d", instancePrefix(comp), comp.ID)))
			if comp.Kind == netlist.KindSubcircuit {
				continue
			}
			base, issue, err := components.BaseName(cctx, comp)
			if err != nil {
				ctx.Sink.Fatal(c.Name, report.AsFatal("", err))
				continue
			}
			if issue != "" {
				ctx.Sink.Severe(c.Name, base, "%s: %s", comp, issue)
			}
			name, err := reg.Claim(base, components.Signature(cctx, comp, base))
			if err != nil {
				ctx.Sink.Fatal(c.Name, report.AsFatal(base, err))
				continue
			}
			names.SetModule(c.Name, comp.ID, name)
		}

		for _, comp := range c.ComponentsOf(netlist.KindSubcircuit) {
			sub, _ := ctx.Design.Circuit(comp.Circuit)
			if err := visit(sub); err != nil {
				ctx.Sink.Fatal(sub.Name, err)
			}
		}
		return nil
	}
	if err := visit(top); err != nil {
		return nil, err
	}
	return names, nil
}

// Interface is the port list of a circuit's module: clock tree buses, the
// dynamic clock output of the top circuit, hidden ports and one port per
// pin.
func Interface(ctx components.Context, layouts map[string]Layout) (hdl.Interface, error) {
	var iface hdl.Interface
	c := ctx.Circuit
	for _, id := range ctx.Design.ClockTreeIDs() {
		iface.Inputs.Add(ClockTreePort(id), clock.BusWidth)
	}
	if dyn := DynamicClock(ctx); dyn != nil {
		iface.Outputs.Add(DynamicClockPort, components.Width(dyn))
	}
	layouts[c.Name].Total.Declare(&iface)
	for _, pin := range c.ComponentsOf(netlist.KindPin) {
		port, ok := ctx.Names.Port(c.Name, pin.PathName())
		if !ok {
			return hdl.Interface{}, fmt.Errorf("%s of circuit %s has no planned port", pin, c.Name)
		}
		if IsOutputPin(pin) {
			iface.Outputs.Add(port, PinWidth(pin))
		} else {
			iface.Inputs.Add(port, PinWidth(pin))
		}
	}
	return iface, nil
}

// DynamicClock returns the run-time divider control of the design, which
// only counts in the top circuit and with a dynamic tick period.
func DynamicClock(ctx components.Context) *netlist.Component {
	if !ctx.IsTop() || ctx.Period >= 0 {
		return nil
	}
	if dyn := ctx.Circuit.ComponentsOf(netlist.KindDynClock); len(dyn) > 0 {
		return dyn[0]
	}
	return nil
}
