package circuit

import (
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

// Layout places the hidden bits of a circuit's components on its hidden
// ports.
type Layout struct {
	Total components.Bubbles
	// Offsets maps a component id to its first bit on each hidden port.
	Offsets map[int]components.Bubbles
	// Sizes maps a component id to its hidden bit counts.
	Sizes map[int]components.Bubbles
}

// Layouts computes the hidden bit layout of every circuit reachable from
// the top. Black boxes expose no hidden bits.
func Layouts(d *netlist.Design) map[string]Layout {
	out := map[string]Layout{}
	var visit func(c *netlist.Circuit) components.Bubbles
	visit = func(c *netlist.Circuit) components.Bubbles {
		if l, ok := out[c.Name]; ok {
			return l.Total
		}
		l := Layout{Offsets: map[int]components.Bubbles{}, Sizes: map[int]components.Bubbles{}}
		if c.BlackBox == nil {
			for _, comp := range c.Components {
				var size components.Bubbles
				if comp.Kind == netlist.KindSubcircuit {
					if sub, ok := d.Circuit(comp.Circuit); ok {
						size = visit(sub)
					}
				} else if !components.IsSpecial(comp.Kind) {
					size = components.BubblesOf(comp)
				}
				if size.Empty() {
					continue
				}
				l.Offsets[comp.ID] = l.Total
				l.Sizes[comp.ID] = size
				l.Total = l.Total.Add(size)
			}
		}
		out[c.Name] = l
		return l.Total
	}
	if top := d.TopCircuit(); top != nil {
		visit(top)
	}
	return out
}

// Direction of a hidden bit as seen from the design.
const (
	HiddenIn    = "in"
	HiddenOut   = "out"
	HiddenInOut = "inout"
)

// HiddenBit is one bit of a top-level hidden port.
type HiddenBit struct {
	Direction string
	// Index is the bit position on the top circuit's hidden port.
	Index int
	// Path is the hierarchical instance path of the owning component.
	Path string
	// Bit is the position within the component's own hidden bits.
	Bit  int
	Kind netlist.Kind
}

// HiddenBits lists every hidden bit of the top circuit in port order.
func HiddenBits(d *netlist.Design, layouts map[string]Layout) []HiddenBit {
	var out []HiddenBit
	var walk func(c *netlist.Circuit, path string, base components.Bubbles)
	walk = func(c *netlist.Circuit, path string, base components.Bubbles) {
		l := layouts[c.Name]
		for _, comp := range c.Components {
			size, ok := l.Sizes[comp.ID]
			if !ok {
				continue
			}
			at := base.Add(l.Offsets[comp.ID])
			p := netlist.JoinPath(path, comp.PathName())
			if comp.Kind == netlist.KindSubcircuit {
				if sub, ok := d.Circuit(comp.Circuit); ok {
					walk(sub, p, at)
				}
				continue
			}
			for i := 0; i < size.Inputs; i++ {
				out = append(out, HiddenBit{Direction: HiddenIn, Index: at.Inputs + i, Path: p, Bit: i, Kind: comp.Kind})
			}
			for i := 0; i < size.Outputs; i++ {
				out = append(out, HiddenBit{Direction: HiddenOut, Index: at.Outputs + i, Path: p, Bit: i, Kind: comp.Kind})
			}
			for i := 0; i < size.InOuts; i++ {
				out = append(out, HiddenBit{Direction: HiddenInOut, Index: at.InOuts + i, Path: p, Bit: i, Kind: comp.Kind})
			}
		}
	}
	if top := d.TopCircuit(); top != nil {
		walk(top, "", components.Bubbles{})
	}
	return out
}
