package components

import "github.com/robert-at-pretension-io/hdlgen/internal/netlist"

var table = map[netlist.Kind]*Generator{
	netlist.KindAnd:        gate(netlist.KindAnd),
	netlist.KindOr:         gate(netlist.KindOr),
	netlist.KindXor:        gate(netlist.KindXor),
	netlist.KindNand:       gate(netlist.KindNand),
	netlist.KindNor:        gate(netlist.KindNor),
	netlist.KindXnor:       gate(netlist.KindXnor),
	netlist.KindNot:        unary(netlist.KindNot),
	netlist.KindBuffer:     unary(netlist.KindBuffer),
	netlist.KindMux:        multiplexer,
	netlist.KindAdder:      adder,
	netlist.KindMultiplier: multiplier,
	netlist.KindRegister:   register,
	netlist.KindROM:        rom,
	netlist.KindRAM:        ram,
	netlist.KindLED:        led,
	netlist.KindButton:     button,
	netlist.KindDipSwitch:  dipSwitch,
	netlist.KindPortIO:     portIO,
	netlist.KindHDL:        verbatim,
}
