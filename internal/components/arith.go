package components

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

const (
	arithCategory = "arithmetic"
	plexCategory  = "plexers"
)

func selectBits(c *netlist.Component) int {
	return max(c.Attrs.Int("select", 1), 1)
}

func muxInput(i int) string {
	return fmt.Sprintf("MuxIn_%d", i)
}

var multiplexer = &Generator{
	Category: plexCategory,
	Template: func(c *netlist.Component) string {
		return fmt.Sprintf("MULTIPLEXER_%d${BUS}", 1<<selectBits(c))
	},
	Shape: func(c *netlist.Component) string {
		return fmt.Sprintf("%s,select=%d", busShape(c), selectBits(c))
	},
	Interface: func(ctx Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		w := sized(&iface, c)
		for i := 0; i < 1<<selectBits(c); i++ {
			iface.Inputs.Add(muxInput(i), w)
		}
		iface.Inputs.Add("Sel", selectBits(c))
		iface.Inputs.Add("Enable", 1)
		iface.Outputs.Add("MuxOut", w)
		if ctx.Lang == hdl.Verilog {
			iface.Registers.Add("s_selected_vector", w)
		}
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		n := 1 << selectBits(c)
		b := hdl.NewBuilder(ctx.Lang)
		if ctx.Lang == hdl.VHDL {
			zero := "'0'"
			if Width(c) > 1 {
				zero = ctx.Lang.Others(0, "NrOfBits")
			}
			sens := []string{"Enable", "Sel"}
			for i := 0; i < n; i++ {
				sens = append(sens, muxInput(i))
			}
			b.Add("make_mux : process(%s)", strings.Join(sens, ", "))
			b.Add("begin").Indent()
			b.Add("if (Enable = '0') then")
			b.Indent().Add("MuxOut <= %s;", zero).Dedent()
			b.Add("else").Indent()
			b.Add("case (Sel) is").Indent()
			for i := 0; i < n-1; i++ {
				b.Add("when %s => MuxOut <= %s;", ctx.Lang.Literal(uint64(i), selectBits(c)), muxInput(i))
			}
			b.Add("when others => MuxOut <= %s;", muxInput(n-1)).Dedent()
			b.Add("end case;").Dedent()
			b.Add("end if;").Dedent()
			b.Add("end process make_mux;")
			return b.Lines(), nil
		}
		b.Add("assign MuxOut = s_selected_vector;")
		b.Empty()
		b.Add("always @(*)")
		b.Add("begin").Indent()
		b.Add("if (~Enable) s_selected_vector <= 0;")
		b.Add("else case (Sel)").Indent()
		for i := 0; i < n-1; i++ {
			b.Add("%s: s_selected_vector <= %s;", ctx.Lang.Literal(uint64(i), selectBits(c)), muxInput(i))
		}
		b.Add("default: s_selected_vector <= %s;", muxInput(n-1)).Dedent()
		b.Add("endcase").Dedent()
		b.Add("end")
		return b.Lines(), nil
	},
	Params: widthParams,
	Ports: func(c *netlist.Component) []PortSpec {
		var ports []PortSpec
		for i := 0; i < 1<<selectBits(c); i++ {
			ports = append(ports, PortSpec{Name: muxInput(i)})
		}
		return append(ports,
			PortSpec{Name: "Sel"},
			PortSpec{Name: "Enable", Default: 1},
			PortSpec{Name: "MuxOut"},
		)
	},
}

// The adder sums into a vector one bit wider than its operands; that
// width is a derived generic on bus variants.
var adder = &Generator{
	Category: arithCategory,
	Template: func(*netlist.Component) string { return "ADDER${BUS}" },
	Shape:    busShape,
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		w, ext := sized(&iface, c), 2
		if w < 0 {
			iface.Generics.AddDerived(-2, "NrOfBits+1")
			ext = -2
		}
		iface.Inputs.Add("DataA", w)
		iface.Inputs.Add("DataB", w)
		iface.Inputs.Add("CarryIn", 1)
		iface.Outputs.Add("Result", w)
		iface.Outputs.Add("CarryOut", 1)
		iface.Wires.Add("s_extended_dataA", ext)
		iface.Wires.Add("s_extended_dataB", ext)
		iface.Wires.Add("s_sum_result", ext)
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		lang := ctx.Lang
		top, result := "1", lang.Index("s_sum_result", 0)
		if Width(c) > 1 {
			top = "NrOfBits"
			if lang == hdl.VHDL {
				result = "s_sum_result(NrOfBits-1 downto 0)"
			} else {
				result = "s_sum_result[NrOfBits-1:0]"
			}
		}
		carry := "s_sum_result(" + top + ")"
		if lang == hdl.Verilog {
			carry = "s_sum_result[" + top + "]"
		}
		b := hdl.NewBuilder(lang)
		b.Text(lang.AssignAligned("s_extended_dataA", 16, lang.Concat(lang.Bit(0), "DataA")))
		b.Text(lang.AssignAligned("s_extended_dataB", 16, lang.Concat(lang.Bit(0), "DataB")))
		if lang == hdl.VHDL {
			b.Add("s_sum_result     <= std_logic_vector(unsigned(s_extended_dataA) + unsigned(s_extended_dataB) +")
			b.Add("                    unsigned'(0 => CarryIn));")
		} else {
			b.Add("assign s_sum_result     = s_extended_dataA + s_extended_dataB + CarryIn;")
		}
		b.Empty()
		b.Text(lang.AssignAligned("Result", 8, result))
		b.Text(lang.AssignAligned("CarryOut", 8, carry))
		return b.Lines(), nil
	},
	Params: func(c *netlist.Component) map[int]int {
		if Width(c) > 1 {
			return map[int]int{-1: Width(c), -2: Width(c) + 1}
		}
		return map[int]int{}
	},
	Ports: func(*netlist.Component) []PortSpec {
		return []PortSpec{
			{Name: "DataA"}, {Name: "DataB"}, {Name: "CarryIn"},
			{Name: "Result"}, {Name: "CarryOut"},
		}
	},
}

var multiplier = &Generator{
	Category: arithCategory,
	Template: func(*netlist.Component) string { return "MULTIPLIER${BUS}" },
	Shape:    busShape,
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		w, prod := sized(&iface, c), 2
		if w < 0 {
			iface.Generics.AddDerived(-2, "2*NrOfBits")
			prod = -2
		}
		iface.Inputs.Add("INP_A", w)
		iface.Inputs.Add("INP_B", w)
		iface.Outputs.Add("Mult", prod)
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		lang := ctx.Lang
		if Width(c) == 1 {
			return []string{lang.Assign("Mult", lang.Concat(lang.Bit(0), "("+lang.And("INP_A", "INP_B")+")"))}, nil
		}
		if lang == hdl.VHDL {
			return []string{"Mult <= std_logic_vector(unsigned(INP_A) * unsigned(INP_B));"}, nil
		}
		return []string{"assign Mult = INP_A * INP_B;"}, nil
	},
	Params: func(c *netlist.Component) map[int]int {
		if Width(c) > 1 {
			return map[int]int{-1: Width(c), -2: 2 * Width(c)}
		}
		return map[int]int{}
	},
	Ports: func(*netlist.Component) []PortSpec {
		return []PortSpec{{Name: "INP_A"}, {Name: "INP_B"}, {Name: "Mult"}}
	},
}
