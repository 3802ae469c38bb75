// Package hdl is the text model shared by every generator: dialect
// selection, indentation-aware line building, literal and expression
// spelling, and the declaration lists a module is rendered from.
package hdl

import (
	"fmt"
	"strings"
)

// Language is the target hardware description dialect.
type Language int

const (
	VHDL Language = iota
	Verilog
)

func (l Language) String() string {
	if l == Verilog {
		return "Verilog"
	}
	return "VHDL"
}

// Dir is the per-language directory name in the output tree.
func (l Language) Dir() string {
	return strings.ToLower(l.String())
}

// Ext is the source file extension, without the dot.
func (l Language) Ext() string {
	if l == Verilog {
		return "v"
	}
	return "vhd"
}

// ParseLanguage accepts "vhdl" or "verilog" in any case.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vhdl", "":
		return VHDL, nil
	case "verilog":
		return Verilog, nil
	}
	return VHDL, fmt.Errorf("unknown HDL language %q", s)
}

// MarshalText lets Language appear in JSON reports and configs.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Language) UnmarshalText(text []byte) error {
	lang, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = lang
	return nil
}

// Vendor selects vendor-specific constructs such as memory initialization.
type Vendor string

const (
	Altera  Vendor = "altera"
	Xilinx  Vendor = "xilinx"
	Generic Vendor = "generic"
)

// ParseVendor maps a config string to a Vendor.
func ParseVendor(s string) (Vendor, error) {
	switch v := Vendor(strings.ToLower(strings.TrimSpace(s))); v {
	case Altera, Xilinx, Generic:
		return v, nil
	case "":
		return Generic, nil
	}
	return Generic, fmt.Errorf("unknown FPGA vendor %q", s)
}
