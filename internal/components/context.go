package components

import (
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// Context is everything a generation function may consult. It is passed
// by value; WithCircuit returns a copy scoped to another circuit.
type Context struct {
	Lang    hdl.Language
	Vendor  hdl.Vendor
	Design  *netlist.Design
	Circuit *netlist.Circuit
	Names   *Names
	Sink    *report.Sink
	// Templates overrides the default module name template per kind.
	Templates map[netlist.Kind]string
	// Period is 0 for full speed, N for a static divider, negative for a
	// run-time divider.
	Period int
	// Resolve locates external HDL files referenced by the design.
	Resolve func(file string) (string, error)
}

func (c Context) WithCircuit(circ *netlist.Circuit) Context {
	c.Circuit = circ
	return c
}

// IsTop reports whether the context is scoped to the top circuit.
func (c Context) IsTop() bool {
	return c.Circuit != nil && c.Design != nil && c.Circuit.Name == c.Design.Top
}

// CircuitName is the name of the scoped circuit, or "".
func (c Context) CircuitName() string {
	if c.Circuit == nil {
		return ""
	}
	return c.Circuit.Name
}

// Names is the identifier table built by the planning pass before any
// text is generated. Generation only reads it.
type Names struct {
	modules   map[string]map[int]string
	instances map[string]map[int]string
	ports     map[string]map[string]string
	circuits  map[string]string
}

func NewNames() *Names {
	return &Names{
		modules:   map[string]map[int]string{},
		instances: map[string]map[int]string{},
		ports:     map[string]map[string]string{},
		circuits:  map[string]string{},
	}
}

func (n *Names) SetModule(circuit string, id int, name string) {
	set(n.modules, circuit, id, name)
}

// Module is the module name of component id in circuit.
func (n *Names) Module(circuit string, id int) (string, bool) {
	name, ok := n.modules[circuit][id]
	return name, ok
}

func (n *Names) SetInstance(circuit string, id int, label string) {
	set(n.instances, circuit, id, label)
}

// Instance is the instance label of component id in circuit.
func (n *Names) Instance(circuit string, id int) (string, bool) {
	label, ok := n.instances[circuit][id]
	return label, ok
}

// SetPort records the port name of the pin whose path name is pin.
func (n *Names) SetPort(circuit, pin, port string) {
	if n.ports[circuit] == nil {
		n.ports[circuit] = map[string]string{}
	}
	n.ports[circuit][pin] = port
}

// Port maps a pin path name of circuit to its port name.
func (n *Names) Port(circuit, pin string) (string, bool) {
	port, ok := n.ports[circuit][pin]
	return port, ok
}

func (n *Names) SetCircuit(circuit, module string) {
	n.circuits[circuit] = module
}

// Circuit is the module name of a circuit.
func (n *Names) Circuit(circuit string) (string, bool) {
	name, ok := n.circuits[circuit]
	return name, ok
}

func set(m map[string]map[int]string, circuit string, id int, value string) {
	if m[circuit] == nil {
		m[circuit] = map[int]string{}
	}
	m[circuit][id] = value
}
