package hdl

import (
	"fmt"
	"sort"
	"strings"
)

// SignalList maps a signal name to its width. A positive value is a fixed
// bit width; a negative value is the id of a generic (or derived generic
// expression) in the owning Interface's GenericList.
type SignalList struct {
	widths map[string]int
}

// Add declares name. Width zero is a programming error.
func (s *SignalList) Add(name string, width int) {
	if width == 0 {
		panic(fmt.Sprintf("hdl: signal %s declared with zero width", name))
	}
	if s.widths == nil {
		s.widths = make(map[string]int)
	}
	s.widths[name] = width
}

// Width returns the fixed width or generic id of name.
func (s SignalList) Width(name string) (int, bool) {
	w, ok := s.widths[name]
	return w, ok
}

func (s SignalList) Has(name string) bool {
	_, ok := s.widths[name]
	return ok
}

func (s SignalList) Len() int {
	return len(s.widths)
}

// Names returns the declared names in name order.
func (s SignalList) Names() []string {
	names := make([]string, 0, len(s.widths))
	for n := range s.widths {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// GenericList maps negative ids to generic parameter names. Entries whose
// value starts with "=" are derived width expressions: they size signals
// but are never declared or assigned as generics.
type GenericList struct {
	entries map[int]string
}

const derivedPrefix = "="

// Add declares a real generic parameter.
func (g *GenericList) Add(id int, name string) {
	g.set(id, name)
}

// AddDerived declares a width expression over other generics.
func (g *GenericList) AddDerived(id int, expr string) {
	g.set(id, derivedPrefix+expr)
}

func (g *GenericList) set(id int, value string) {
	if id >= 0 {
		panic(fmt.Sprintf("hdl: generic id %d is not negative", id))
	}
	if g.entries == nil {
		g.entries = make(map[int]string)
	}
	g.entries[id] = value
}

// Name returns the generic name, or the derived expression without prefix.
func (g GenericList) Name(id int) (string, bool) {
	v, ok := g.entries[id]
	return strings.TrimPrefix(v, derivedPrefix), ok
}

func (g GenericList) IsDerived(id int) bool {
	return strings.HasPrefix(g.entries[id], derivedPrefix)
}

// Expr is the width expression usable inside a type: a bare generic name
// or a parenthesized derived expression.
func (g GenericList) Expr(id int) string {
	name, _ := g.Name(id)
	if g.IsDerived(id) {
		return "(" + name + ")"
	}
	return name
}

// IDs returns every id, -1 first.
func (g GenericList) IDs() []int {
	ids := make([]int, 0, len(g.entries))
	for id := range g.entries {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	return ids
}

// Real returns the ids of generics that are declared and assigned.
func (g GenericList) Real() []int {
	var ids []int
	for _, id := range g.IDs() {
		if !g.IsDerived(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g GenericList) Len() int {
	return len(g.entries)
}

// MemoryType is an array type: Depth words of Width bits.
type MemoryType struct {
	Name  string
	Depth int
	Width int
}

// TypeList holds the array types a module declares, by name.
type TypeList struct {
	types map[string]MemoryType
}

func (t *TypeList) Add(mt MemoryType) {
	if t.types == nil {
		t.types = make(map[string]MemoryType)
	}
	t.types[mt.Name] = mt
}

func (t TypeList) Get(name string) (MemoryType, bool) {
	mt, ok := t.types[name]
	return mt, ok
}

func (t TypeList) Names() []string {
	names := make([]string, 0, len(t.types))
	for n := range t.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InitStyle selects how a memory's preload payload is referenced.
type InitStyle int

const (
	InitNone InitStyle = iota
	// InitAttribute attaches a ram_init_file synthesis attribute.
	InitAttribute
	// InitReadmem loads a hex word file at elaboration time.
	InitReadmem
)

// Memory is one memory signal of a declared array type.
type Memory struct {
	Type     string
	InitFile string
	Style    InitStyle
}

// MemoryList maps memory signal names to their declaration.
type MemoryList struct {
	mems map[string]Memory
}

func (m *MemoryList) Add(name string, mem Memory) {
	if m.mems == nil {
		m.mems = make(map[string]Memory)
	}
	m.mems[name] = mem
}

func (m MemoryList) Get(name string) (Memory, bool) {
	mem, ok := m.mems[name]
	return mem, ok
}

func (m MemoryList) Names() []string {
	names := make([]string, 0, len(m.mems))
	for n := range m.mems {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m MemoryList) usesStyle(style InitStyle) bool {
	for _, mem := range m.mems {
		if mem.Style == style {
			return true
		}
	}
	return false
}

// Interface is everything a module declares besides its behavior.
type Interface struct {
	Generics  GenericList
	Inputs    SignalList
	Outputs   SignalList
	InOuts    SignalList
	Wires     SignalList
	Registers SignalList
	Types     TypeList
	Memories  MemoryList
	// Initial holds dialect-specific initial value expressions for registers.
	Initial map[string]string
}

// SetInitial records the power-up value of a register.
func (i *Interface) SetInitial(name, expr string) {
	if i.Initial == nil {
		i.Initial = make(map[string]string)
	}
	i.Initial[name] = expr
}

// PortWidth resolves a port's width using the generic values of one
// instantiation. The second result is false for unknown ports or missing
// generic values.
func (i Interface) PortWidth(name string, params map[int]int) (int, bool) {
	for _, list := range []SignalList{i.Inputs, i.Outputs, i.InOuts} {
		if w, ok := list.Width(name); ok {
			if w > 0 {
				return w, true
			}
			v, ok := params[w]
			return v, ok
		}
	}
	return 0, false
}

// Direction names the port direction of name, or "" if undeclared.
func (i Interface) Direction(name string) string {
	switch {
	case i.Inputs.Has(name):
		return "in"
	case i.Outputs.Has(name):
		return "out"
	case i.InOuts.Has(name):
		return "inout"
	}
	return ""
}

// PortNames lists inputs, then inouts, then outputs, each in name order.
func (i Interface) PortNames() []string {
	var names []string
	names = append(names, i.Inputs.Names()...)
	names = append(names, i.InOuts.Names()...)
	names = append(names, i.Outputs.Names()...)
	return names
}

// typeOf spells the type of a signal declared with width-or-id w.
func (i Interface) typeOf(lang Language, w int) string {
	if w > 0 {
		return lang.Type(w)
	}
	return lang.GenericType(i.Generics.Expr(w))
}
