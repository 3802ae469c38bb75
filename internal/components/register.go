package components

import (
	"fmt"

	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/naming"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

// zeroOf spells an all-zero value for a signal declared with width w.
func zeroOf(lang hdl.Language, w int, generic string) string {
	switch {
	case lang == hdl.Verilog:
		return "0"
	case w < 0:
		return lang.Others(0, generic)
	}
	return lang.Zeros(w)
}

// The register samples on the raw clock edge while its trigger's clock
// bus signal is high; Reset is asynchronous.
var register = &Generator{
	Category: "memory",
	Clocked:  true,
	Template: func(*netlist.Component) string { return "REGISTER${BUS}_${TRIGGER}" },
	Shape: func(c *netlist.Component) string {
		return fmt.Sprintf("%s,trigger=%s", busShape(c), naming.TriggerToken(trigger(c)))
	},
	Interface: func(ctx Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		w := sized(&iface, c)
		iface.Inputs.Add("D", w)
		iface.Inputs.Add(ClockBusPort, clock.BusWidth)
		iface.Inputs.Add("Enable", 1)
		iface.Inputs.Add("Reset", 1)
		iface.Outputs.Add("Q", w)
		iface.Registers.Add("s_state_reg", w)
		iface.SetInitial("s_state_reg", zeroOf(ctx.Lang, w, "NrOfBits"))
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, iface hdl.Interface) ([]string, error) {
		lang := ctx.Lang
		enable := clockEnable(lang, trigger(c))
		edge := globalClock(lang)
		b := hdl.NewBuilder(lang)
		b.Text(lang.Assign("Q", "s_state_reg"))
		b.Empty()
		if lang == hdl.VHDL {
			w, _ := iface.Registers.Width("s_state_reg")
			b.Add("make_state : process(%s, Reset)", edge)
			b.Add("begin").Indent()
			b.Add("if (Reset = '1') then")
			b.Indent().Add("s_state_reg <= %s;", zeroOf(lang, w, "NrOfBits")).Dedent()
			b.Add("elsif rising_edge(%s) then", edge).Indent()
			b.Add("if (%s = '1' and Enable = '1') then", enable)
			b.Indent().Add("s_state_reg <= D;").Dedent()
			b.Add("end if;").Dedent()
			b.Add("end if;").Dedent()
			b.Add("end process make_state;")
			return b.Lines(), nil
		}
		b.Add("always @(posedge %s or posedge Reset)", edge)
		b.Add("begin").Indent()
		b.Add("if (Reset) s_state_reg <= 0;")
		b.Add("else if (%s & Enable) s_state_reg <= D;", enable).Dedent()
		b.Add("end")
		return b.Lines(), nil
	},
	Params: widthParams,
	Ports: func(*netlist.Component) []PortSpec {
		return []PortSpec{
			{Name: "D"},
			{Name: ClockBusPort, End: ClockEnd, Clock: true},
			{Name: "Enable", Default: 1},
			{Name: "Reset"},
			{Name: "Q"},
		}
	},
}
