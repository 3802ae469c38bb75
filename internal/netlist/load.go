package netlist

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Load reads and indexes a design file.
func Load(path string) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read design")
	}
	return Parse(data)
}

// Parse decodes design JSON and indexes it.
func Parse(data []byte) (*Design, error) {
	var d Design
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "decode design")
	}
	if err := d.Index(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Index builds the lookup tables and checks referential integrity: every
// point names an existing net and an in-range bit, every subcircuit names
// an existing circuit, and the hierarchy is acyclic.
func (d *Design) Index() error {
	d.circuits = make(map[string]*Circuit, len(d.Circuits))
	for _, c := range d.Circuits {
		if c.Name == "" {
			return errors.New("circuit without name")
		}
		if _, dup := d.circuits[c.Name]; dup {
			return errors.Errorf("duplicate circuit %q", c.Name)
		}
		d.circuits[c.Name] = c
		if err := c.index(); err != nil {
			return errors.Wrap(err, "circuit "+c.Name)
		}
	}
	if _, ok := d.circuits[d.Top]; !ok {
		return errors.Errorf("top circuit %q not found", d.Top)
	}
	trees := map[int]bool{}
	for _, ct := range d.ClockTrees {
		if trees[ct.ID] {
			return errors.Errorf("duplicate clock tree %d", ct.ID)
		}
		if ct.HighTicks < 1 || ct.LowTicks < 1 {
			return errors.Errorf("clock tree %d: high and low ticks must be positive", ct.ID)
		}
		trees[ct.ID] = true
	}
	for _, c := range d.Circuits {
		for i := range c.Nets {
			if ct := c.Nets[i].ClockTree; ct != nil && !trees[*ct] {
				return errors.Errorf("circuit %s: net %d references unknown clock tree %d", c.Name, c.Nets[i].ID, *ct)
			}
		}
		for _, comp := range c.Components {
			if comp.Kind != KindSubcircuit {
				continue
			}
			if _, ok := d.circuits[comp.Circuit]; !ok {
				return errors.Errorf("circuit %s: %s references unknown circuit %q", c.Name, comp, comp.Circuit)
			}
		}
	}
	return d.checkAcyclic()
}

func (c *Circuit) index() error {
	c.nets = make(map[int]*Net, len(c.Nets))
	for i := range c.Nets {
		n := &c.Nets[i]
		if n.Width < 1 {
			return errors.Errorf("net %d has width %d", n.ID, n.Width)
		}
		if _, dup := c.nets[n.ID]; dup {
			return errors.Errorf("duplicate net %d", n.ID)
		}
		c.nets[n.ID] = n
	}
	for i := range c.Nets {
		n := &c.Nets[i]
		if !n.ForcedRoot {
			continue
		}
		if len(n.Sources) != 0 && len(n.Sources) != n.Width {
			return errors.Errorf("net %d: %d sources for width %d", n.ID, len(n.Sources), n.Width)
		}
		if len(n.Sinks) != 0 && len(n.Sinks) != n.Width {
			return errors.Errorf("net %d: %d sink lists for width %d", n.ID, len(n.Sinks), n.Width)
		}
		for _, p := range n.Sources {
			if err := c.checkPoint(p); err != nil {
				return errors.Wrapf(err, "net %d source", n.ID)
			}
		}
		for _, sinks := range n.Sinks {
			for _, p := range sinks {
				if err := c.checkPoint(p); err != nil {
					return errors.Wrapf(err, "net %d sink", n.ID)
				}
			}
		}
	}
	ids := map[int]bool{}
	for _, comp := range c.Components {
		if !comp.Kind.Valid() {
			return errors.Errorf("component %d has unknown kind %q", comp.ID, comp.Kind)
		}
		if ids[comp.ID] {
			return errors.Errorf("duplicate component id %d", comp.ID)
		}
		ids[comp.ID] = true
		for _, e := range comp.Ends {
			for _, p := range e.Points {
				if err := c.checkPoint(p); err != nil {
					return errors.Wrapf(err, "%s end %s", comp, e.Name)
				}
			}
		}
	}
	return nil
}

func (c *Circuit) checkPoint(p ConnectionPoint) error {
	if !p.Connected() {
		return nil
	}
	n, ok := c.nets[p.Net]
	if !ok {
		return errors.Errorf("unknown net %d", p.Net)
	}
	if p.Bit < 0 || p.Bit >= n.Width {
		return errors.Errorf("bit %d out of range for net %d of width %d", p.Bit, p.Net, n.Width)
	}
	return nil
}

func (d *Design) checkAcyclic() error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var visit func(name string, trail []string) error
	visit = func(name string, trail []string) error {
		switch state[name] {
		case visiting:
			return errors.Errorf("recursive hierarchy: %v", append(trail, name))
		case done:
			return nil
		}
		state[name] = visiting
		for _, comp := range d.circuits[name].ComponentsOf(KindSubcircuit) {
			if err := visit(comp.Circuit, append(trail, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	return visit(d.Top, nil)
}
