package components

import (
	"bytes"
	"fmt"

	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/naming"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

const memoryCategory = "memory"

func addrBits(c *netlist.Component) int {
	return max(c.Attrs.Int("addrBits", 1), 1)
}

func dataBits(c *netlist.Component) int {
	return max(c.Attrs.Int("dataBits", 1), 1)
}

// lanes is the number of words stored per address.
func lanes(c *netlist.Component) int {
	return max(c.Attrs.Int("lines", 1), 1)
}

func dataPort(c *netlist.Component, lane int) string {
	if lanes(c) == 1 {
		return "Data"
	}
	return fmt.Sprintf("Data_%d", lane)
}

func memorySignal(lane int) string {
	return fmt.Sprintf("s_memory_%d", lane)
}

// addressIndex converts the Address port into an array index.
func addressIndex(lang hdl.Language, bits int) string {
	switch {
	case lang == hdl.Verilog:
		return "Address"
	case bits == 1:
		return "to_integer(unsigned'(0 => Address))"
	}
	return "to_integer(unsigned(Address))"
}

// InitFileName names the preload payload of one memory lane.
func InitFileName(module string, lane, lanes int, vendor hdl.Vendor) string {
	base := module
	if lanes > 1 {
		base = fmt.Sprintf("%s_%d", module, lane)
	}
	if vendor == hdl.Altera {
		return base + ".mif"
	}
	return base + ".mem"
}

// LaneWords splits memory contents into one word list per lane. Word
// address*lanes+lane belongs to lane; missing words are zero.
func LaneWords(contents []uint64, depth, lanes, width int) [][]uint64 {
	mask := ^uint64(0)
	if width < 64 {
		mask = uint64(1)<<uint(width) - 1
	}
	out := make([][]uint64, lanes)
	for lane := range out {
		out[lane] = make([]uint64, depth)
		for addr := 0; addr < depth; addr++ {
			if i := addr*lanes + lane; i < len(contents) {
				out[lane][addr] = contents[i] & mask
			}
		}
	}
	return out
}

// MIF renders a memory initialization file.
func MIF(words []uint64, width int) []byte {
	var buf bytes.Buffer
	digits := (width + 3) / 4
	fmt.Fprintf(&buf, "-- Generated by hdlgen\n")
	fmt.Fprintf(&buf, "DEPTH = %d;\n", len(words))
	fmt.Fprintf(&buf, "WIDTH = %d;\n", width)
	buf.WriteString("ADDRESS_RADIX = HEX;\n")
	buf.WriteString("DATA_RADIX = HEX;\n")
	buf.WriteString("CONTENT\nBEGIN\n")
	for addr, w := range words {
		fmt.Fprintf(&buf, "   %X : %0*X;\n", addr, digits, w)
	}
	buf.WriteString("END;\n")
	return buf.Bytes()
}

// MemFile renders one hex word per line, as read by $readmemh.
func MemFile(words []uint64, width int) []byte {
	var buf bytes.Buffer
	digits := (width + 3) / 4
	for _, w := range words {
		fmt.Fprintf(&buf, "%0*X\n", digits, w)
	}
	return buf.Bytes()
}

func initStyle(vendor hdl.Vendor) hdl.InitStyle {
	if vendor == hdl.Altera {
		return hdl.InitAttribute
	}
	return hdl.InitReadmem
}

var rom = &Generator{
	Category:      memoryCategory,
	LabelSpecific: true,
	Template:      func(*netlist.Component) string { return "${CIRCUIT}_ROM_${LABEL}" },
	Shape: func(c *netlist.Component) string {
		return fmt.Sprintf("addr=%d,data=%d,lines=%d", addrBits(c), dataBits(c), lanes(c))
	},
	Interface: func(ctx Context, c *netlist.Component) (hdl.Interface, error) {
		module, err := ModuleName(ctx, c)
		if err != nil {
			return hdl.Interface{}, err
		}
		var iface hdl.Interface
		iface.Inputs.Add("Address", addrBits(c))
		iface.Types.Add(hdl.MemoryType{Name: "t_rom_memory", Depth: 1 << addrBits(c), Width: dataBits(c)})
		for lane := 0; lane < lanes(c); lane++ {
			iface.Outputs.Add(dataPort(c, lane), dataBits(c))
			iface.Memories.Add(memorySignal(lane), hdl.Memory{
				Type:     "t_rom_memory",
				InitFile: InitFileName(module, lane, lanes(c), ctx.Vendor),
				Style:    initStyle(ctx.Vendor),
			})
		}
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		lang := ctx.Lang
		index := addressIndex(lang, addrBits(c))
		var lines []string
		for lane := 0; lane < lanes(c); lane++ {
			src := fmt.Sprintf("%s(%s)", memorySignal(lane), index)
			if lang == hdl.Verilog {
				src = fmt.Sprintf("%s[%s]", memorySignal(lane), index)
			}
			lines = append(lines, lang.Assign(dataPort(c, lane), src))
		}
		return lines, nil
	},
	Ports: func(c *netlist.Component) []PortSpec {
		ports := []PortSpec{{Name: "Address", Required: true}}
		for lane := 0; lane < lanes(c); lane++ {
			ports = append(ports, PortSpec{Name: dataPort(c, lane)})
		}
		return ports
	},
	Inits: func(ctx Context, c *netlist.Component) ([]emit.File, error) {
		module, err := ModuleName(ctx, c)
		if err != nil {
			return nil, err
		}
		contents, err := c.Attrs.Uint64s("contents")
		if err != nil {
			return nil, err
		}
		var files []emit.File
		for lane, words := range LaneWords(contents, 1<<addrBits(c), lanes(c), dataBits(c)) {
			payload := MemFile(words, dataBits(c))
			if ctx.Vendor == hdl.Altera {
				payload = MIF(words, dataBits(c))
			}
			files = append(files, emit.File{Name: InitFileName(module, lane, lanes(c), ctx.Vendor), Content: payload})
		}
		return files, nil
	},
}

// RAM contents are volatile: no preload payload is ever attached.
var ram = &Generator{
	Category: memoryCategory,
	Clocked:  true,
	Template: func(c *netlist.Component) string {
		return fmt.Sprintf("RAM_%dx%d_${TRIGGER}", addrBits(c), dataBits(c))
	},
	Shape: func(c *netlist.Component) string {
		return fmt.Sprintf("addr=%d,data=%d,trigger=%s", addrBits(c), dataBits(c), naming.TriggerToken(trigger(c)))
	},
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		var iface hdl.Interface
		iface.Inputs.Add("Address", addrBits(c))
		iface.Inputs.Add("DataIn", dataBits(c))
		iface.Inputs.Add("WE", 1)
		iface.Inputs.Add(ClockBusPort, clock.BusWidth)
		iface.Outputs.Add("DataOut", dataBits(c))
		iface.Types.Add(hdl.MemoryType{Name: "t_ram_memory", Depth: 1 << addrBits(c), Width: dataBits(c)})
		iface.Memories.Add("s_memory", hdl.Memory{Type: "t_ram_memory"})
		return iface, nil
	},
	Behavior: func(ctx Context, c *netlist.Component, _ hdl.Interface) ([]string, error) {
		lang := ctx.Lang
		index := addressIndex(lang, addrBits(c))
		enable := clockEnable(lang, trigger(c))
		edge := globalClock(lang)
		b := hdl.NewBuilder(lang)
		if lang == hdl.VHDL {
			b.Add("DataOut <= s_memory(%s);", index)
			b.Empty()
			b.Add("make_memory : process(%s)", edge)
			b.Add("begin").Indent()
			b.Add("if rising_edge(%s) then", edge).Indent()
			b.Add("if (WE = '1' and %s = '1') then", enable)
			b.Indent().Add("s_memory(%s) <= DataIn;", index).Dedent()
			b.Add("end if;").Dedent()
			b.Add("end if;").Dedent()
			b.Add("end process make_memory;")
			return b.Lines(), nil
		}
		b.Add("assign DataOut = s_memory[%s];", index)
		b.Empty()
		b.Add("always @(posedge %s)", edge)
		b.Indent().Add("if (WE & %s) s_memory[%s] <= DataIn;", enable, index).Dedent()
		return b.Lines(), nil
	},
	Ports: func(*netlist.Component) []PortSpec {
		return []PortSpec{
			{Name: "Address", Required: true},
			{Name: "DataIn"},
			{Name: "WE"},
			{Name: ClockBusPort, End: ClockEnd, Clock: true},
			{Name: "DataOut"},
		}
	},
}
