package extractor

import (
	"regexp"
	"strings"
)

// VHDL patterns. Every pattern applies to one comment-stripped line.
var (
	// Pattern: entity <name> is
	entityPattern = regexp.MustCompile(`(?i)^\s*entity\s+(\w+)\s+is`)

	// Pattern: architecture <name> of <entity> is
	archPattern = regexp.MustCompile(`(?i)^\s*architecture\s+(\w+)\s+of\s+(\w+)\s+is`)

	// Pattern: package <name> is
	packagePattern = regexp.MustCompile(`(?i)^\s*package\s+(\w+)\s+is`)

	// Pattern: use <library>.<package>.all
	usePattern = regexp.MustCompile(`(?i)^\s*use\s+([\w.]+)`)

	// Pattern: library <name>
	libraryPattern = regexp.MustCompile(`(?i)^\s*library\s+(\w+)`)

	// Pattern: component <name>
	componentPattern = regexp.MustCompile(`(?i)^\s*component\s+(\w+)`)

	// Pattern: signal <name> : <type>
	signalPattern = regexp.MustCompile(`(?i)^\s*signal\s+(\w+)\s*:\s*([^:;]+?)\s*(?::=.*)?;`)

	// Pattern: <names> : <direction> <type>
	portPattern = regexp.MustCompile(`(?i)^\s*(?:port\s*\(\s*)?(\w+(?:\s*,\s*\w+)*)\s*:\s*(in|out|inout|buffer)\s+(.+)$`)

	// Pattern: <name> : entity <lib>.<entity>
	entityInstPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*entity\s+([\w.]+)`)

	// Pattern: <name> : <component> generic|port
	compInstPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*(\w+)\s*(?:generic|port)`)

	// Pattern: <name> : <component> alone on a line; the map follows.
	compInstHeadPattern = regexp.MustCompile(`(?i)^\s*(\w+)\s*:\s*(\w+)\s*$`)

	// Pattern: generic map ( | port map (
	mapPattern = regexp.MustCompile(`(?i)^\s*(?:generic|port)\s+map\b`)

	// Pattern: end [entity|component] ...
	vhdlEndPattern = regexp.MustCompile(`(?i)^\s*end\b`)

	// Pattern: <type>(<hi> downto|to <lo>)
	vectorPattern = regexp.MustCompile(`(?i)\(\s*(\d+)\s+(downto|to)\s+(\d+)\s*\)`)

	// Pattern: range <lo> to <hi>
	rangePattern = regexp.MustCompile(`(?i)range\s+(\d+)\s+to\s+(\d+)`)
)

// Verilog patterns.
var (
	// Pattern: module <name>
	modulePattern = regexp.MustCompile(`^\s*module\s+(\w+)`)

	// Pattern: endmodule
	endModulePattern = regexp.MustCompile(`^\s*endmodule\b`)

	// Pattern: input|output|inout [wire|reg] [range] <names>
	verilogPortPattern = regexp.MustCompile(`^\s*(input|output|inout)\s+(?:(?:wire|reg|logic)\s+)?(?:signed\s+)?(\[[^\]]*\])?\s*(\w+(?:\s*,\s*\w+)*)`)

	// Pattern: wire|reg [range] <name>
	verilogSignalPattern = regexp.MustCompile(`^\s*(wire|reg)\s+(?:signed\s+)?(\[[^\]]*\])?\s*(\w+)`)

	// Pattern: <module> <label> (
	verilogInstPattern = regexp.MustCompile(`^\s*(\w+)\s+(\w+)\s*\(`)

	// Pattern: <module> #(
	verilogParamInstPattern = regexp.MustCompile(`^\s*(\w+)\s*#\s*\(`)

	// Pattern: ) <label> (
	verilogInstLabelPattern = regexp.MustCompile(`^\s*\)\s*(\w+)\s*\(`)

	// Pattern: `include "<file>"
	includePattern = regexp.MustCompile("^\\s*`include\\s+\"([^\"]+)\"")

	// Pattern: [<hi>:<lo>]
	verilogRangePattern = regexp.MustCompile(`^\[\s*(\d+)\s*:\s*(\d+)\s*\]$`)
)

// verilogKeywords may start a line that looks like an instantiation.
var verilogKeywords = map[string]bool{
	"module": true, "input": true, "output": true, "inout": true, "wire": true, "reg": true,
	"assign": true, "always": true, "initial": true, "if": true, "else": true, "case": true,
	"begin": true, "end": true, "function": true, "task": true, "parameter": true,
	"localparam": true, "generate": true, "for": true, "integer": true, "genvar": true,
}

// matchEntity returns [name] if line declares an entity
func matchEntity(line string) []string {
	if m := entityPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchArchitecture returns [name, entity] if line declares an architecture
func matchArchitecture(line string) []string {
	if m := archPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1], m[2]}
	}
	return nil
}

// matchPackage returns [name] if line declares a package
func matchPackage(line string) []string {
	// Exclude "package body"
	if strings.Contains(strings.ToLower(line), "package body") {
		return nil
	}
	if m := packagePattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchUseClause returns [target] if line is a use clause
func matchUseClause(line string) []string {
	if m := usePattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchLibrary returns [name] if line is a library clause
func matchLibrary(line string) []string {
	if m := libraryPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchComponent returns [name] if line declares a component
func matchComponent(line string) []string {
	if m := componentPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return nil
}

// matchSignal returns [name, type] if line declares a signal
func matchSignal(line string) []string {
	if m := signalPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1], strings.TrimSpace(m[2])}
	}
	return nil
}

// matchPort returns [names, direction, type] if line declares ports
func matchPort(line string) []string {
	if m := portPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1], strings.ToLower(m[2]), portType(m[3])}
	}
	return nil
}

// portType trims the separator and any closing parenthesis of the port list.
func portType(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ":="); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	for strings.HasSuffix(s, ")") && strings.Count(s, ")") > strings.Count(s, "(") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ")"))
	}
	return s
}

// matchEntityInstantiation returns [label, entity_ref] if line is a direct entity instantiation
func matchEntityInstantiation(line string) []string {
	if m := entityInstPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1], m[2]}
	}
	return nil
}

// matchComponentInstantiation returns [label, component] if line is a component instantiation
func matchComponentInstantiation(line string) []string {
	if m := compInstPattern.FindStringSubmatch(line); m != nil {
		return []string{m[1], m[2]}
	}
	return nil
}

// matchVerilogInstance returns [module, label] for "<module> <label> (".
func matchVerilogInstance(line string) []string {
	m := verilogInstPattern.FindStringSubmatch(line)
	if m == nil || verilogKeywords[m[1]] {
		return nil
	}
	return []string{m[1], m[2]}
}

func stripComment(line, prefix string) string {
	if i := strings.Index(line, prefix); i >= 0 {
		return line[:i]
	}
	return line
}
