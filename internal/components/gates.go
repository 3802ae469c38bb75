package components

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

const (
	gateResult   = "Result"
	gateCategory = "gates"
)

func gateInputs(c *netlist.Component) int {
	return max(c.Attrs.Int("inputs", 2), 1)
}

func gateInput(i int) string {
	return fmt.Sprintf("Input_%d", i)
}

// widthParams is the generic assignment of a component sized by NrOfBits.
func widthParams(c *netlist.Component) map[int]int {
	if Width(c) > 1 {
		return map[int]int{-1: Width(c)}
	}
	return map[int]int{}
}

// sized declares NrOfBits on bus variants and returns the width to use
// for data ports: the generic id, or 1.
func sized(iface *hdl.Interface, c *netlist.Component) int {
	if Width(c) > 1 {
		iface.Generics.Add(-1, "NrOfBits")
		return -1
	}
	return 1
}

// gateDefault is the identity input of the gate's operator.
func gateDefault(kind netlist.Kind) int {
	if kind == netlist.KindAnd || kind == netlist.KindNand {
		return 1
	}
	return 0
}

func gate(kind netlist.Kind) *Generator {
	prefix := strings.ToUpper(string(kind)) + "_GATE"
	return &Generator{
		Category: gateCategory,
		Template: func(c *netlist.Component) string {
			if n := gateInputs(c); n != 2 {
				return fmt.Sprintf("%s_%d_INPUTS${BUS}", prefix, n)
			}
			return prefix + "${BUS}"
		},
		Shape: func(c *netlist.Component) string {
			return fmt.Sprintf("%s,inputs=%d", busShape(c), gateInputs(c))
		},
		Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
			var iface hdl.Interface
			w := sized(&iface, c)
			for i := 1; i <= gateInputs(c); i++ {
				iface.Inputs.Add(gateInput(i), w)
			}
			iface.Outputs.Add(gateResult, w)
			return iface, nil
		},
		Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
			var operands []string
			for i := 1; i <= gateInputs(c); i++ {
				operands = append(operands, gateInput(i))
			}
			lang := ctx.Lang
			var expr string
			switch kind {
			case netlist.KindAnd, netlist.KindNand:
				expr = lang.And(operands...)
			case netlist.KindOr, netlist.KindNor:
				expr = lang.Or(operands...)
			default:
				expr = lang.Xor(operands...)
			}
			switch kind {
			case netlist.KindNand, netlist.KindNor, netlist.KindXnor:
				expr = lang.Not(expr)
			}
			return []string{lang.Assign(gateResult, expr)}, nil
		},
		Params: widthParams,
		Ports: func(c *netlist.Component) []PortSpec {
			var ports []PortSpec
			for i := 1; i <= gateInputs(c); i++ {
				ports = append(ports, PortSpec{Name: gateInput(i), Default: gateDefault(kind)})
			}
			return append(ports, PortSpec{Name: gateResult})
		},
	}
}

// unary covers the inverter and the buffer.
func unary(kind netlist.Kind) *Generator {
	prefix := "BUFFER"
	if kind == netlist.KindNot {
		prefix = "INVERTER"
	}
	return &Generator{
		Category: gateCategory,
		Template: func(*netlist.Component) string { return prefix + "${BUS}" },
		Shape:    busShape,
		Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
			var iface hdl.Interface
			w := sized(&iface, c)
			iface.Inputs.Add(gateInput(1), w)
			iface.Outputs.Add(gateResult, w)
			return iface, nil
		},
		Behavior: func(ctx Context, _ *netlist.Component, _ hdl.Interface) ([]string, error) {
			src := gateInput(1)
			if kind == netlist.KindNot {
				src = ctx.Lang.Not(src)
			}
			return []string{ctx.Lang.Assign(gateResult, src)}, nil
		},
		Params: widthParams,
		Ports: func(*netlist.Component) []PortSpec {
			return []PortSpec{{Name: gateInput(1)}, {Name: gateResult}}
		},
	}
}
