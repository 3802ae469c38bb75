// Package board reads the FPGA board description: which physical pin, if
// any, each top-level pin bit and hidden I/O bit of the design is mapped
// to.
package board

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// Board is a parsed board file.
type Board struct {
	Name     string    `yaml:"name" json:"name"`
	Vendor   string    `yaml:"vendor" json:"vendor"`
	Clock    Clock     `yaml:"clock" json:"clock"`
	Mappings []Mapping `yaml:"mappings" json:"mappings"`

	index map[string]*Mapping
}

// Clock is the board oscillator.
type Clock struct {
	Pin       string `yaml:"pin" json:"pin"`
	Frequency int    `yaml:"frequency" json:"frequency"`
}

// Mapping binds the bits of one design signal, named by its instance
// path, to the board. Bits are listed LSB first.
type Mapping struct {
	Path string `yaml:"path" json:"path"`
	Bits []Bit  `yaml:"bits" json:"bits"`
}

// Bit is one mapped bit: a physical pin, a constant or explicitly open.
type Bit struct {
	Pin      string `yaml:"pin,omitempty" json:"pin,omitempty"`
	Constant *int   `yaml:"constant,omitempty" json:"constant,omitempty"`
	Open     bool   `yaml:"open,omitempty" json:"open,omitempty"`
	Inverted bool   `yaml:"inverted,omitempty" json:"inverted,omitempty"`
}

// BitKind classifies a mapped bit.
type BitKind int

const (
	Unmapped BitKind = iota
	PinBit
	ConstantBit
	OpenBit
)

func (b Bit) Kind() BitKind {
	switch {
	case b.Pin != "":
		return PinBit
	case b.Constant != nil:
		return ConstantBit
	case b.Open:
		return OpenBit
	}
	return Unmapped
}

// Value is the constant bit, 0 for any other kind.
func (b Bit) Value() int {
	if b.Constant == nil {
		return 0
	}
	return *b.Constant & 1
}

// Load reads and checks a board file.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("board file %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes board YAML. A bit must name exactly one of pin, constant
// or open, and a physical pin may only be used once.
func Parse(data []byte) (*Board, error) {
	var b Board
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}
	if err := b.check(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Board) check() error {
	if _, err := hdl.ParseVendor(b.Vendor); err != nil {
		return err
	}
	b.index = make(map[string]*Mapping, len(b.Mappings))
	pins := map[string]string{}
	if b.Clock.Pin != "" {
		pins[strings.ToUpper(b.Clock.Pin)] = "clock"
	}
	for i := range b.Mappings {
		m := &b.Mappings[i]
		if m.Path == "" {
			return fmt.Errorf("mapping %d has no path", i)
		}
		if _, dup := b.index[m.Path]; dup {
			return fmt.Errorf("path %q is mapped twice", m.Path)
		}
		b.index[m.Path] = m
		for bit, mb := range m.Bits {
			n := 0
			if mb.Pin != "" {
				n++
			}
			if mb.Constant != nil {
				n++
				if *mb.Constant != 0 && *mb.Constant != 1 {
					return fmt.Errorf("%s bit %d: constant must be 0 or 1", m.Path, bit)
				}
			}
			if mb.Open {
				n++
			}
			if n != 1 {
				return fmt.Errorf("%s bit %d: exactly one of pin, constant or open is required", m.Path, bit)
			}
			if mb.Pin == "" {
				continue
			}
			key := strings.ToUpper(mb.Pin)
			if owner, used := pins[key]; used {
				return fmt.Errorf("pin %s is used by %s and %s bit %d", mb.Pin, owner, m.Path, bit)
			}
			pins[key] = fmt.Sprintf("%s bit %d", m.Path, bit)
		}
	}
	return nil
}

// VendorOf is the board's vendor, generic when unset.
func (b *Board) VendorOf() hdl.Vendor {
	v, _ := hdl.ParseVendor(b.Vendor)
	return v
}

// Lookup returns the mapping of an instance path.
func (b *Board) Lookup(path string) (*Mapping, bool) {
	if b == nil {
		return nil, false
	}
	if b.index == nil {
		b.index = make(map[string]*Mapping, len(b.Mappings))
		for i := range b.Mappings {
			b.index[b.Mappings[i].Path] = &b.Mappings[i]
		}
	}
	m, ok := b.index[path]
	return m, ok
}

// BitAt returns bit i of the mapping at path, Unmapped when absent.
func (b *Board) BitAt(path string, i int) Bit {
	m, ok := b.Lookup(path)
	if !ok || i < 0 || i >= len(m.Bits) {
		return Bit{}
	}
	return m.Bits[i]
}

// Paths lists the mapped paths in file order.
func (b *Board) Paths() []string {
	out := make([]string, 0, len(b.Mappings))
	for _, m := range b.Mappings {
		out = append(out, m.Path)
	}
	return out
}
