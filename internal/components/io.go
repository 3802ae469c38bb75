package components

import (
	"fmt"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

const ioCategory = "io"

func fixedShape(c *netlist.Component) string {
	return fmt.Sprintf("width=%d", Width(c))
}

var led = &Generator{
	Category: ioCategory,
	Template: func(*netlist.Component) string { return "LED" },
	Shape:    func(*netlist.Component) string { return "" },
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		iface.Inputs.Add("Input", 1)
		Bubbles{Outputs: 1}.Declare(&iface)
		return iface, nil
	},
	Behavior: func(ctx Context, _ *netlist.Component, _ hdl.Interface) ([]string, error) {
		return []string{ctx.Lang.Assign(HiddenOutput, "Input")}, nil
	},
	Ports:   func(*netlist.Component) []PortSpec { return []PortSpec{{Name: "Input"}} },
	Bubbles: func(*netlist.Component) Bubbles { return Bubbles{Outputs: 1} },
}

var button = &Generator{
	Category: ioCategory,
	Template: func(*netlist.Component) string { return "BUTTON" },
	Shape:    func(*netlist.Component) string { return "" },
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		iface.Outputs.Add("Output", 1)
		Bubbles{Inputs: 1}.Declare(&iface)
		return iface, nil
	},
	Behavior: func(ctx Context, _ *netlist.Component, _ hdl.Interface) ([]string, error) {
		return []string{ctx.Lang.Assign("Output", HiddenInput)}, nil
	},
	Ports:   func(*netlist.Component) []PortSpec { return []PortSpec{{Name: "Output"}} },
	Bubbles: func(*netlist.Component) Bubbles { return Bubbles{Inputs: 1} },
}

var dipSwitch = &Generator{
	Category: ioCategory,
	Template: func(*netlist.Component) string { return "DIPSWITCH_${WIDTH}" },
	Shape:    fixedShape,
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		iface.Outputs.Add("Output", Width(c))
		Bubbles{Inputs: Width(c)}.Declare(&iface)
		return iface, nil
	},
	Behavior: func(ctx Context, _ *netlist.Component, _ hdl.Interface) ([]string, error) {
		return []string{ctx.Lang.Assign("Output", HiddenInput)}, nil
	},
	Ports:   func(*netlist.Component) []PortSpec { return []PortSpec{{Name: "Output"}} },
	Bubbles: func(c *netlist.Component) Bubbles { return Bubbles{Inputs: Width(c)} },
}

// portIO drives its pads from DataIn while OutputEnable is high and
// always reports the pad levels on DataOut.
var portIO = &Generator{
	Category: ioCategory,
	Template: func(*netlist.Component) string { return "PORTIO_${WIDTH}" },
	Shape:    fixedShape,
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		iface.Inputs.Add("DataIn", Width(c))
		iface.Inputs.Add("OutputEnable", 1)
		iface.Outputs.Add("DataOut", Width(c))
		Bubbles{InOuts: Width(c)}.Declare(&iface)
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		w := Width(c)
		if ctx.Lang == hdl.VHDL {
			z := "'Z'"
			if w > 1 {
				z = "(others => 'Z')"
			}
			return []string{
				fmt.Sprintf("%s <= DataIn when OutputEnable = '1' else %s;", HiddenInOut, z),
				fmt.Sprintf("DataOut <= %s;", HiddenInOut),
			}, nil
		}
		return []string{
			fmt.Sprintf("assign %s = OutputEnable ? DataIn : %d'b%s;", HiddenInOut, w, strings.Repeat("z", w)),
			fmt.Sprintf("assign DataOut = %s;", HiddenInOut),
		}, nil
	},
	Ports: func(*netlist.Component) []PortSpec {
		return []PortSpec{{Name: "DataIn"}, {Name: "OutputEnable", Default: 1}, {Name: "DataOut"}}
	},
	Bubbles: func(c *netlist.Component) Bubbles { return Bubbles{InOuts: Width(c)} },
}
