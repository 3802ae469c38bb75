package hdl

import (
	"fmt"
	"strings"
)

// CommentPrefix is the single-line comment token.
func (l Language) CommentPrefix() string {
	if l == Verilog {
		return "//"
	}
	return "--"
}

// Bit spells a single-bit literal.
func (l Language) Bit(v int) string {
	if l == Verilog {
		return fmt.Sprintf("1'b%d", v&1)
	}
	return fmt.Sprintf("'%d'", v&1)
}

// Literal spells value as a width-bit constant. Bits above 64 are zero.
func (l Language) Literal(value uint64, width int) string {
	if width == 1 {
		return l.Bit(int(value & 1))
	}
	var sb strings.Builder
	for i := width - 1; i >= 0; i-- {
		if i < 64 && value&(uint64(1)<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	if l == Verilog {
		return fmt.Sprintf("%d'b%s", width, sb.String())
	}
	return "\"" + sb.String() + "\""
}

// Zeros is an all-zero literal of the given width.
func (l Language) Zeros(width int) string {
	return l.Fill(0, width)
}

// Fill repeats bit across width positions.
func (l Language) Fill(bit, width int) string {
	if width == 1 {
		return l.Bit(bit)
	}
	digits := strings.Repeat(fmt.Sprint(bit&1), width)
	if l == Verilog {
		return fmt.Sprintf("%d'b%s", width, digits)
	}
	return "\"" + digits + "\""
}

// Others is an aggregate filling a vector of unknown width (VHDL), or a
// replicated bit (Verilog).
func (l Language) Others(bit int, width string) string {
	if l == Verilog {
		return fmt.Sprintf("{%s{1'b%d}}", width, bit&1)
	}
	return fmt.Sprintf("(others => '%d')", bit&1)
}

// Index selects one bit of a vector.
func (l Language) Index(name string, bit int) string {
	if l == Verilog {
		return fmt.Sprintf("%s[%d]", name, bit)
	}
	return fmt.Sprintf("%s(%d)", name, bit)
}

// Slice selects bits hi down to lo; a one-bit slice is an Index.
func (l Language) Slice(name string, hi, lo int) string {
	if hi == lo {
		return l.Index(name, hi)
	}
	if l == Verilog {
		return fmt.Sprintf("%s[%d:%d]", name, hi, lo)
	}
	return fmt.Sprintf("%s(%d downto %d)", name, hi, lo)
}

// Concat joins parts most significant first.
func (l Language) Concat(parts ...string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	if l == Verilog {
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return strings.Join(parts, " & ")
}

func (l Language) Not(expr string) string {
	if l == Verilog {
		return "~(" + expr + ")"
	}
	return "not(" + expr + ")"
}

// Assign is a continuous assignment statement.
func (l Language) Assign(dst, src string) string {
	if l == Verilog {
		return fmt.Sprintf("assign %s = %s;", dst, src)
	}
	return fmt.Sprintf("%s <= %s;", dst, src)
}

// AssignAligned pads dst to width so assignment blocks line up.
func (l Language) AssignAligned(dst string, pad int, src string) string {
	if l == Verilog {
		return fmt.Sprintf("assign %-*s = %s;", pad, dst, src)
	}
	return fmt.Sprintf("%-*s <= %s;", pad, dst, src)
}

// And joins operands with the bitwise and operator.
func (l Language) And(operands ...string) string {
	return l.join(operands, " and ", " & ")
}

func (l Language) Or(operands ...string) string {
	return l.join(operands, " or ", " | ")
}

func (l Language) Xor(operands ...string) string {
	return l.join(operands, " xor ", " ^ ")
}

func (l Language) join(operands []string, vhdl, verilog string) string {
	if l == Verilog {
		return strings.Join(operands, verilog)
	}
	return strings.Join(operands, vhdl)
}

// Range spells the index range of a vector whose width is a literal or a
// generic expression. Verilog single bits have no range.
func (l Language) Range(width string) string {
	if l == Verilog {
		return fmt.Sprintf("[%s-1:0]", width)
	}
	return fmt.Sprintf("(%s-1 downto 0)", width)
}

// Type spells a signal type of fixed width. Verilog returns the range
// prefix only, empty for single bits.
func (l Language) Type(width int) string {
	if l == Verilog {
		if width == 1 {
			return ""
		}
		return fmt.Sprintf("[%d:0]", width-1)
	}
	if width == 1 {
		return "std_logic"
	}
	return fmt.Sprintf("std_logic_vector(%d downto 0)", width-1)
}

// GenericType spells a vector whose width is the generic expression expr.
func (l Language) GenericType(expr string) string {
	if l == Verilog {
		return fmt.Sprintf("[%s-1:0]", expr)
	}
	return fmt.Sprintf("std_logic_vector(%s-1 downto 0)", expr)
}
