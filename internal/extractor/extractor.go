// Package extractor scans VHDL and Verilog text for the facts the
// generator checks: declared modules and their ports, signals, component
// instances and library dependencies. It is line based and understands the
// layout hdlgen emits and ordinary hand-written sources.
package extractor

import (
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// FileFacts contains all extracted information from a single HDL file
type FileFacts struct {
	File          string
	Language      hdl.Language
	Entities      []Entity
	Architectures []Architecture
	Packages      []Package
	Components    []Component
	Dependencies  []Dependency
	Signals       []Signal
}

// Entity is a VHDL entity or a Verilog module declaration.
type Entity struct {
	Name  string
	Line  int
	Ports []Port
}

// Architecture represents a VHDL architecture body
type Architecture struct {
	Name       string
	EntityName string
	Line       int
}

// Package represents a VHDL package declaration
type Package struct {
	Name string
	Line int
}

// Component represents a component declaration or instantiation
type Component struct {
	Name       string
	EntityRef  string // The module it references
	Line       int
	IsInstance bool
	InModule   string
}

// Dependency represents a use/library clause or include
type Dependency struct {
	Target string
	Kind   string // "use", "library", "include"
	Line   int
}

// Signal represents an internal signal declaration
type Signal struct {
	Name     string
	Type     string
	Line     int
	InEntity string
}

// Port represents a module port
type Port struct {
	Name      string
	Direction string // in, out, inout, buffer
	Type      string
	Width     int // 0 when the width depends on a generic
	Line      int
}

// LanguageOf infers the dialect from a file extension.
func LanguageOf(path string) (hdl.Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vhd", ".vhdl":
		return hdl.VHDL, true
	case ".v", ".sv":
		return hdl.Verilog, true
	}
	return hdl.VHDL, false
}

// Extract reads an HDL file and extracts facts
func Extract(filePath string) (FileFacts, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return FileFacts{File: filePath}, fmt.Errorf("reading file: %w", err)
	}
	lang, ok := LanguageOf(filePath)
	if !ok {
		return FileFacts{File: filePath}, fmt.Errorf("%s: not an HDL source", filePath)
	}
	return ExtractText(filePath, lang, content), nil
}

// ExtractText scans content as lang.
func ExtractText(file string, lang hdl.Language, content []byte) FileFacts {
	if lang == hdl.Verilog {
		return extractVerilog(file, content)
	}
	return extractVHDL(file, content)
}

// Declares reports whether facts declare a module named name, ignoring case.
func (f FileFacts) Declares(name string) bool {
	for _, e := range f.Entities {
		if strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

// EntityNames lists the declared module names in file order.
func (f FileFacts) EntityNames() []string {
	names := make([]string, 0, len(f.Entities))
	for _, e := range f.Entities {
		names = append(names, e.Name)
	}
	return names
}

func extractVHDL(file string, content []byte) FileFacts {
	facts := FileFacts{File: file, Language: hdl.VHDL}
	lines := splitLines(string(content))

	var current *Entity // entity whose port list is being read
	inComponent := false
	scope := ""
	for i, raw := range lines {
		lineNum := i + 1
		line := stripComment(raw, "--")

		if matches := matchEntity(line); matches != nil {
			facts.Entities = append(facts.Entities, Entity{Name: matches[0], Line: lineNum})
			current = &facts.Entities[len(facts.Entities)-1]
			scope = matches[0]
			continue
		}
		if matches := matchComponent(line); matches != nil {
			facts.Components = append(facts.Components, Component{Name: matches[0], EntityRef: matches[0], Line: lineNum, InModule: scope})
			inComponent = true
			continue
		}
		if vhdlEndPattern.MatchString(line) {
			if inComponent {
				inComponent = false
			} else {
				current = nil
			}
			continue
		}
		if current != nil && !inComponent {
			if matches := matchPort(line); matches != nil {
				for _, name := range strings.Split(matches[0], ",") {
					current.Ports = append(current.Ports, Port{
						Name:      strings.TrimSpace(name),
						Direction: matches[1],
						Type:      matches[2],
						Width:     CalculateWidth(matches[2]),
						Line:      lineNum,
					})
				}
				continue
			}
		}
		if matches := matchArchitecture(line); matches != nil {
			facts.Architectures = append(facts.Architectures, Architecture{Name: matches[0], EntityName: matches[1], Line: lineNum})
			scope = matches[1]
			continue
		}
		if matches := matchPackage(line); matches != nil {
			facts.Packages = append(facts.Packages, Package{Name: matches[0], Line: lineNum})
			continue
		}
		if matches := matchLibrary(line); matches != nil {
			facts.Dependencies = append(facts.Dependencies, Dependency{Target: matches[0], Kind: "library", Line: lineNum})
			continue
		}
		if matches := matchUseClause(line); matches != nil {
			facts.Dependencies = append(facts.Dependencies, Dependency{Target: matches[0], Kind: "use", Line: lineNum})
			continue
		}
		if matches := matchSignal(line); matches != nil {
			facts.Signals = append(facts.Signals, Signal{Name: matches[0], Type: matches[1], Line: lineNum, InEntity: scope})
			continue
		}
		if matches := matchEntityInstantiation(line); matches != nil {
			ref := matches[1]
			if dot := strings.LastIndex(ref, "."); dot >= 0 {
				ref = ref[dot+1:]
			}
			facts.Components = append(facts.Components, Component{Name: matches[0], EntityRef: ref, Line: lineNum, IsInstance: true, InModule: scope})
			continue
		}
		if matches := matchComponentInstantiation(line); matches != nil {
			facts.Components = append(facts.Components, Component{Name: matches[0], EntityRef: matches[1], Line: lineNum, IsInstance: true, InModule: scope})
			continue
		}
		if m := compInstHeadPattern.FindStringSubmatch(line); m != nil && i+1 < len(lines) && mapPattern.MatchString(lines[i+1]) {
			facts.Components = append(facts.Components, Component{Name: m[1], EntityRef: m[2], Line: lineNum, IsInstance: true, InModule: scope})
		}
	}
	return facts
}

func extractVerilog(file string, content []byte) FileFacts {
	facts := FileFacts{File: file, Language: hdl.Verilog}
	lines := splitLines(string(content))

	var current *Entity
	pending := "" // module of a parameterized instance awaiting its label
	for i, raw := range lines {
		lineNum := i + 1
		line := stripComment(raw, "//")

		if m := modulePattern.FindStringSubmatch(line); m != nil {
			facts.Entities = append(facts.Entities, Entity{Name: m[1], Line: lineNum})
			current = &facts.Entities[len(facts.Entities)-1]
			continue
		}
		if endModulePattern.MatchString(line) {
			current = nil
			continue
		}
		if m := includePattern.FindStringSubmatch(line); m != nil {
			facts.Dependencies = append(facts.Dependencies, Dependency{Target: m[1], Kind: "include", Line: lineNum})
			continue
		}
		if current == nil {
			continue
		}
		if m := verilogPortPattern.FindStringSubmatch(line); m != nil {
			dir := map[string]string{"input": "in", "output": "out", "inout": "inout"}[m[1]]
			for _, name := range strings.Split(m[3], ",") {
				current.Ports = append(current.Ports, Port{
					Name:      strings.TrimSpace(name),
					Direction: dir,
					Type:      m[2],
					Width:     verilogWidth(m[2]),
					Line:      lineNum,
				})
			}
			continue
		}
		if m := verilogSignalPattern.FindStringSubmatch(line); m != nil {
			facts.Signals = append(facts.Signals, Signal{Name: m[3], Type: strings.TrimSpace(m[1] + " " + m[2]), Line: lineNum, InEntity: current.Name})
			continue
		}
		if m := verilogParamInstPattern.FindStringSubmatch(line); m != nil && !verilogKeywords[m[1]] {
			pending = m[1]
			continue
		}
		if m := verilogInstLabelPattern.FindStringSubmatch(line); m != nil && pending != "" {
			facts.Components = append(facts.Components, Component{Name: m[1], EntityRef: pending, Line: lineNum, IsInstance: true, InModule: current.Name})
			pending = ""
			continue
		}
		if matches := matchVerilogInstance(line); matches != nil {
			facts.Components = append(facts.Components, Component{Name: matches[1], EntityRef: matches[0], Line: lineNum, IsInstance: true, InModule: current.Name})
		}
	}
	return facts
}

// CalculateWidth returns the bit width of a VHDL type, or 0 when it
// depends on a generic or cannot be determined.
func CalculateWidth(typ string) int {
	t := strings.ToLower(strings.TrimSpace(typ))
	switch t {
	case "":
		return 0
	case "std_logic", "std_ulogic", "bit", "boolean":
		return 1
	}
	if m := vectorPattern.FindStringSubmatch(t); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[3])
		if a < b {
			a, b = b, a
		}
		return a - b + 1
	}
	if m := rangePattern.FindStringSubmatch(t); m != nil {
		hi, _ := strconv.Atoi(m[2])
		return max(bits.Len(uint(hi)), 1)
	}
	return 0
}

func verilogWidth(rng string) int {
	if rng == "" {
		return 1
	}
	m := verilogRangePattern.FindStringSubmatch(strings.TrimSpace(rng))
	if m == nil {
		return 0
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	if a < b {
		a, b = b, a
	}
	return a - b + 1
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, strings.TrimSuffix(s[start:i], "\r"))
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
