// Package netlist holds the elaborated design consumed by the generators.
// A Design is produced once by an external elaboration pass and is never
// modified here: every accessor is read-only.
package netlist

import (
	"fmt"
	"sort"
)

// Kind is the closed set of component kinds the generators understand.
type Kind string

const (
	KindAnd        Kind = "and"
	KindOr         Kind = "or"
	KindXor        Kind = "xor"
	KindNand       Kind = "nand"
	KindNor        Kind = "nor"
	KindXnor       Kind = "xnor"
	KindNot        Kind = "not"
	KindBuffer     Kind = "buffer"
	KindConstant   Kind = "constant"
	KindMux        Kind = "mux"
	KindAdder      Kind = "adder"
	KindMultiplier Kind = "multiplier"
	KindRegister   Kind = "register"
	KindROM        Kind = "rom"
	KindRAM        Kind = "ram"
	KindLED        Kind = "led"
	KindButton     Kind = "button"
	KindDipSwitch  Kind = "dipswitch"
	KindPortIO     Kind = "portio"
	KindHDL        Kind = "hdl"
	KindPin        Kind = "pin"
	KindClock      Kind = "clock"
	KindDynClock   Kind = "dynclock"
	KindSubcircuit Kind = "subcircuit"
)

// Kinds lists every known kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindAnd, KindOr, KindXor, KindNand, KindNor, KindXnor, KindNot, KindBuffer,
		KindConstant, KindMux, KindAdder, KindMultiplier, KindRegister, KindROM, KindRAM,
		KindLED, KindButton, KindDipSwitch, KindPortIO, KindHDL,
		KindPin, KindClock, KindDynClock, KindSubcircuit,
	}
}

func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Design is a complete elaborated hierarchy.
type Design struct {
	Name       string      `json:"name"`
	Top        string      `json:"top"`
	Circuits   []*Circuit  `json:"circuits"`
	ClockTrees []ClockTree `json:"clockTrees,omitempty"`

	circuits map[string]*Circuit
}

// ClockTree is one clock source lineage. Ticks count raw clock periods of
// the divided user clock.
type ClockTree struct {
	ID        int `json:"id"`
	HighTicks int `json:"highTicks"`
	LowTicks  int `json:"lowTicks"`
	Phase     int `json:"phase"`
}

// BlackBox marks a circuit implemented by an external HDL file.
type BlackBox struct {
	File     string `json:"file"`
	Language string `json:"language,omitempty"`
}

// Circuit is one level of the hierarchy with its own net numbering.
type Circuit struct {
	Name       string       `json:"name"`
	Nets       []Net        `json:"nets,omitempty"`
	Components []*Component `json:"components,omitempty"`
	BlackBox   *BlackBox    `json:"blackBox,omitempty"`

	nets map[int]*Net
}

// Net is a set of connected points. Sources and Sinks are only meaningful
// on forced-root nets: Sources[i] drives bit i, Sinks[i] lists the points
// bit i drives.
type Net struct {
	ID         int                 `json:"id"`
	Width      int                 `json:"width"`
	ForcedRoot bool                `json:"forcedRoot,omitempty"`
	Sources    []ConnectionPoint   `json:"sources,omitempty"`
	Sinks      [][]ConnectionPoint `json:"sinks,omitempty"`
	ClockTree  *int                `json:"clockTree,omitempty"`
}

// IsBus reports whether the net carries more than one bit.
func (n Net) IsBus() bool {
	return n.Width > 1
}

// ConnectionPoint is one bit of one net. Net < 0 means unconnected.
type ConnectionPoint struct {
	Net int `json:"net"`
	Bit int `json:"bit"`
}

// Unconnected is the point used for a floating bit.
var Unconnected = ConnectionPoint{Net: -1}

func (p ConnectionPoint) Connected() bool {
	return p.Net >= 0
}

// ConnectionEnd is a named port occurrence, one point per bit, LSB first.
type ConnectionEnd struct {
	Name   string            `json:"name"`
	Output bool              `json:"output,omitempty"`
	Points []ConnectionPoint `json:"points"`
}

func (e ConnectionEnd) Width() int {
	return len(e.Points)
}

// Connected reports whether any bit of the end is attached to a net.
func (e ConnectionEnd) Connected() bool {
	for _, p := range e.Points {
		if p.Connected() {
			return true
		}
	}
	return false
}

// Component is one instance inside a circuit.
type Component struct {
	ID      int             `json:"id"`
	Kind    Kind            `json:"kind"`
	Attrs   Attributes      `json:"attrs,omitempty"`
	Ends    []ConnectionEnd `json:"ends,omitempty"`
	Circuit string          `json:"circuit,omitempty"`
}

// Label is the user label, possibly empty.
func (c *Component) Label() string {
	return c.Attrs.String("label", "")
}

// End finds a port occurrence by name.
func (c *Component) End(name string) (ConnectionEnd, bool) {
	for _, e := range c.Ends {
		if e.Name == name {
			return e, true
		}
	}
	return ConnectionEnd{}, false
}

// PathName is the component's element in a hierarchical instance path:
// its label when set, otherwise kind and id.
func (c *Component) PathName() string {
	if l := c.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("%s%d", c.Kind, c.ID)
}

func (c *Component) String() string {
	return fmt.Sprintf("%s#%d", c.Kind, c.ID)
}

// Circuit returns a circuit by name. The design must have been indexed.
func (d *Design) Circuit(name string) (*Circuit, bool) {
	c, ok := d.circuits[name]
	return c, ok
}

// TopCircuit returns the root of the hierarchy.
func (d *Design) TopCircuit() *Circuit {
	return d.circuits[d.Top]
}

// ClockTree returns the tree with the given id.
func (d *Design) ClockTree(id int) (ClockTree, bool) {
	for _, ct := range d.ClockTrees {
		if ct.ID == id {
			return ct, true
		}
	}
	return ClockTree{}, false
}

// ClockTreeIDs returns the tree ids in ascending order.
func (d *Design) ClockTreeIDs() []int {
	ids := make([]int, 0, len(d.ClockTrees))
	for _, ct := range d.ClockTrees {
		ids = append(ids, ct.ID)
	}
	sort.Ints(ids)
	return ids
}

// Net returns the net with the given id.
func (c *Circuit) Net(id int) (*Net, bool) {
	n, ok := c.nets[id]
	return n, ok
}

// ComponentsOf returns the components of one kind in id order.
func (c *Circuit) ComponentsOf(kind Kind) []*Component {
	var out []*Component
	for _, comp := range c.Components {
		if comp.Kind == kind {
			out = append(out, comp)
		}
	}
	return out
}

// Has reports whether the circuit contains a component of kind.
func (c *Circuit) Has(kind Kind) bool {
	return len(c.ComponentsOf(kind)) > 0
}

// JoinPath builds a hierarchical instance path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}
