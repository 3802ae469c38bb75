package hdl

import (
	"fmt"
	"sort"
	"strings"
)

var vhdlLibraries = []string{
	"library ieee;",
	"use ieee.std_logic_1164.all;",
	"use ieee.numeric_std.all;",
}

var vhdlTextioLibraries = []string{
	"use std.textio.all;",
	"use ieee.std_logic_textio.all;",
}

// Banner is the framed comment that opens every generated file.
func Banner(lang Language, name string, doc ...string) []string {
	b := NewBuilder(lang)
	lines := []string{"Generated by hdlgen", "Component : " + name}
	lines = append(lines, doc...)
	b.Remark(lines...)
	return b.Lines()
}

// Entity renders a VHDL entity declaration file.
func Entity(name string, iface Interface, doc ...string) []string {
	b := NewBuilder(VHDL)
	b.AddLines(Banner(VHDL, name, doc...)...)
	b.Empty()
	b.AddLines(vhdlLibraries...)
	b.Empty()
	b.Add("entity %s is", name)
	b.Indent()
	b.AddLines(vhdlInterface(iface)...)
	b.Dedent()
	b.Add("end entity %s;", name)
	return b.Lines()
}

// Component renders the VHDL component declaration a parent needs to
// instantiate name.
func Component(name string, iface Interface) []string {
	b := NewBuilder(VHDL)
	b.Add("component %s", name)
	b.Indent()
	b.AddLines(vhdlInterface(iface)...)
	b.Dedent()
	b.Add("end component;")
	return b.Lines()
}

func vhdlInterface(iface Interface) []string {
	b := NewBuilder(VHDL)
	if real := iface.Generics.Real(); len(real) > 0 {
		pad := 0
		for _, id := range real {
			n, _ := iface.Generics.Name(id)
			pad = max(pad, len(n))
		}
		b.Add("generic (")
		b.Indent()
		for i, id := range real {
			n, _ := iface.Generics.Name(id)
			b.Add("%-*s : integer%s", pad, n, separator(i, len(real), ";"))
		}
		b.Dedent()
		b.Add(");")
	}
	names := iface.PortNames()
	if len(names) == 0 {
		return b.Lines()
	}
	pad := 0
	for _, n := range names {
		pad = max(pad, len(n))
	}
	b.Add("port (")
	b.Indent()
	for i, n := range names {
		w, _ := portWidth(iface, n)
		b.Add("%-*s : %-5s %s%s", pad, n, iface.Direction(n), iface.typeOf(VHDL, w), separator(i, len(names), ";"))
	}
	b.Dedent()
	b.Add(");")
	return b.Lines()
}

func portWidth(iface Interface, name string) (int, bool) {
	for _, list := range []SignalList{iface.Inputs, iface.Outputs, iface.InOuts} {
		if w, ok := list.Width(name); ok {
			return w, true
		}
	}
	return 0, false
}

func separator(i, n int, sep string) string {
	if i == n-1 {
		return ""
	}
	return sep
}

// Architecture renders a VHDL architecture file. components are the
// declarations of every module the body instantiates.
func Architecture(name string, iface Interface, components [][]string, body []string, doc ...string) []string {
	b := NewBuilder(VHDL)
	b.AddLines(Banner(VHDL, name, doc...)...)
	b.Empty()
	b.AddLines(vhdlLibraries...)
	if iface.Memories.usesStyle(InitReadmem) {
		b.AddLines(vhdlTextioLibraries...)
	}
	b.Empty()
	b.Add("architecture platform_independent of %s is", name)
	b.Indent()
	decls := vhdlDeclarations(iface)
	if len(decls) > 0 {
		b.Empty()
		b.AddLines(decls...)
	}
	for _, comp := range components {
		b.Empty()
		b.AddLines(comp...)
	}
	b.Dedent()
	b.Empty()
	b.Add("begin")
	b.Indent()
	b.AddLines(body...)
	b.Dedent()
	b.Empty()
	b.Add("end platform_independent;")
	return b.Lines()
}

func vhdlDeclarations(iface Interface) []string {
	b := NewBuilder(VHDL)
	for _, tn := range iface.Types.Names() {
		mt, _ := iface.Types.Get(tn)
		b.Add("type %s is array (0 to %d) of %s;", mt.Name, mt.Depth-1, VHDL.Type(mt.Width))
	}
	loaders := map[string]bool{}
	for _, mn := range iface.Memories.Names() {
		mem, _ := iface.Memories.Get(mn)
		if mem.Style != InitReadmem || loaders[mem.Type] {
			continue
		}
		loaders[mem.Type] = true
		if mt, ok := iface.Types.Get(mem.Type); ok {
			b.AddLines(vhdlLoader(mt)...)
		}
	}
	signals := map[string]string{}
	pad := 0
	for _, list := range []SignalList{iface.Wires, iface.Registers} {
		for _, n := range list.Names() {
			w, _ := list.Width(n)
			signals[n] = iface.typeOf(VHDL, w)
			pad = max(pad, len(n))
		}
	}
	for _, n := range sortedKeys(signals) {
		init := ""
		if v, ok := iface.Initial[n]; ok {
			init = " := " + v
		}
		b.Add("signal %-*s : %s%s;", pad, n, signals[n], init)
	}
	attrDeclared := false
	for _, mn := range iface.Memories.Names() {
		mem, _ := iface.Memories.Get(mn)
		switch mem.Style {
		case InitReadmem:
			b.Add("signal %s : %s := f_load_%s(\"%s\");", mn, mem.Type, mem.Type, mem.InitFile)
		case InitAttribute:
			b.Add("signal %s : %s;", mn, mem.Type)
			if !attrDeclared {
				b.Add("attribute ram_init_file : string;")
				attrDeclared = true
			}
			b.Add("attribute ram_init_file of %s : signal is \"%s\";", mn, mem.InitFile)
		default:
			b.Add("signal %s : %s;", mn, mem.Type)
		}
	}
	return b.Lines()
}

// vhdlLoader reads one hex word per line; hread needs a multiple of four bits.
func vhdlLoader(mt MemoryType) []string {
	digits := (mt.Width + 3) / 4
	word := "v_word(0)"
	if mt.Width > 1 {
		word = fmt.Sprintf("v_word(%d downto 0)", mt.Width-1)
	}
	b := NewBuilder(VHDL)
	b.Add("impure function f_load_%s(file_name : string) return %s is", mt.Name, mt.Name)
	b.Indent()
	b.Add("file     v_file : text open read_mode is file_name;")
	b.Add("variable v_line : line;")
	b.Add("variable v_word : std_logic_vector(%d downto 0);", digits*4-1)
	b.Add("variable v_mem  : %s;", mt.Name)
	b.Dedent()
	b.Add("begin")
	b.Indent()
	b.Add("for i in %s'range loop", mt.Name)
	b.Indent()
	b.Add("readline(v_file, v_line);")
	b.Add("hread(v_line, v_word);")
	b.Add("v_mem(i) := %s;", word)
	b.Dedent()
	b.Add("end loop;")
	b.Add("return v_mem;")
	b.Dedent()
	b.Add("end function;")
	return b.Lines()
}

// Module renders a complete Verilog module.
func Module(name string, iface Interface, body []string, doc ...string) []string {
	b := NewBuilder(Verilog)
	b.AddLines(Banner(Verilog, name, doc...)...)
	b.Empty()
	b.AddLines(verilogHeader(name, iface)...)
	b.Indent()
	decls := verilogDeclarations(iface)
	if len(decls) > 0 {
		b.Empty()
		b.AddLines(decls...)
	}
	if len(body) > 0 {
		b.Empty()
		b.AddLines(body...)
	}
	b.Dedent()
	b.Empty()
	b.Add("endmodule")
	return b.Lines()
}

func verilogHeader(name string, iface Interface) []string {
	b := NewBuilder(Verilog)
	head := "module " + name
	if real := iface.Generics.Real(); len(real) > 0 {
		b.Text(head + " #(")
		b.Indent()
		for i, id := range real {
			n, _ := iface.Generics.Name(id)
			b.Add("parameter %s = 1%s", n, separator(i, len(real), ","))
		}
		b.Dedent()
		head = ")"
	}
	names := iface.PortNames()
	if len(names) == 0 {
		b.Text(head + ";")
		return b.Lines()
	}
	b.Text(head + " (")
	b.Indent()
	for i, n := range names {
		w, _ := portWidth(iface, n)
		dir := map[string]string{"in": "input ", "out": "output", "inout": "inout "}[iface.Direction(n)]
		b.Add("%s", strings.Join(nonEmpty(dir, "wire", iface.typeOf(Verilog, w), n), " ")+separator(i, len(names), ","))
	}
	b.Dedent()
	b.Add(");")
	return b.Lines()
}

func verilogDeclarations(iface Interface) []string {
	b := NewBuilder(Verilog)
	for _, n := range iface.Wires.Names() {
		w, _ := iface.Wires.Width(n)
		b.Add("%s;", strings.Join(nonEmpty("wire", iface.typeOf(Verilog, w), n), " "))
	}
	for _, n := range iface.Registers.Names() {
		w, _ := iface.Registers.Width(n)
		init := ""
		if v, ok := iface.Initial[n]; ok {
			init = " = " + v
		}
		b.Add("%s%s;", strings.Join(nonEmpty("reg", iface.typeOf(Verilog, w), n), " "), init)
	}
	for _, mn := range iface.Memories.Names() {
		mem, _ := iface.Memories.Get(mn)
		mt, ok := iface.Types.Get(mem.Type)
		if !ok {
			continue
		}
		decl := fmt.Sprintf("%s [0:%d];", strings.Join(nonEmpty("reg", Verilog.Type(mt.Width), mn), " "), mt.Depth-1)
		switch mem.Style {
		case InitAttribute:
			b.Add("(* ram_init_file = \"%s\" *) %s", mem.InitFile, decl)
		case InitReadmem:
			b.Text(decl)
			b.Add("initial $readmemh(\"%s\", %s);", mem.InitFile, mn)
		default:
			b.Text(decl)
		}
	}
	return b.Lines()
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
