package facts

import (
	"sort"

	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
)

// Tables is the relational fact model of a generated tree.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Files        []FileRow       `json:"files"`
	Modules      []ModuleRow     `json:"modules"`
	Ports        []PortRow       `json:"ports"`
	Signals      []SignalRow     `json:"signals"`
	Instances    []InstanceRow   `json:"instances"`
	Dependencies []DependencyRow `json:"dependencies"`
}

// FileRow describes one emitted file. Role is entity, behavior, module,
// memory, constraint or blackbox.
type FileRow struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Role     string `json:"role"`
	Hash     string `json:"hash"`
}

// ModuleRow is a VHDL entity or Verilog module declaration.
type ModuleRow struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
}

type PortRow struct {
	Module    string `json:"module"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Width     int    `json:"width"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

type SignalRow struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	File  string `json:"file"`
	Line  int    `json:"line"`
	Scope string `json:"scope"`
}

type InstanceRow struct {
	Name     string `json:"name"`
	Target   string `json:"target"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	InModule string `json:"in_module"`
}

type DependencyRow struct {
	File   string `json:"file"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
	Line   int    `json:"line"`
}

// BuildTables converts extractor FileFacts into a normalized relational
// model. files carries the rows for every emitted file, HDL or not; a
// scanned file without a row gets one with an empty role.
func BuildTables(facts []extractor.FileFacts, files []FileRow) Tables {
	tables := emptyTables()

	seenFiles := make(map[string]bool)
	for _, f := range files {
		if !seenFiles[f.Path] {
			seenFiles[f.Path] = true
			tables.Files = append(tables.Files, f)
		}
	}

	for _, f := range facts {
		if !seenFiles[f.File] {
			seenFiles[f.File] = true
			tables.Files = append(tables.Files, FileRow{
				Path:     f.File,
				Language: f.Language.String(),
			})
		}

		for _, e := range f.Entities {
			tables.Modules = append(tables.Modules, ModuleRow{
				Name: e.Name,
				File: f.File,
				Line: e.Line,
			})
			for _, p := range e.Ports {
				tables.Ports = append(tables.Ports, PortRow{
					Module:    e.Name,
					Name:      p.Name,
					Direction: p.Direction,
					Type:      p.Type,
					Width:     p.Width,
					File:      f.File,
					Line:      p.Line,
				})
			}
		}

		for _, s := range f.Signals {
			tables.Signals = append(tables.Signals, SignalRow{
				Name:  s.Name,
				Type:  s.Type,
				File:  f.File,
				Line:  s.Line,
				Scope: s.InEntity,
			})
		}

		for _, c := range f.Components {
			if !c.IsInstance {
				continue
			}
			tables.Instances = append(tables.Instances, InstanceRow{
				Name:     c.Name,
				Target:   c.EntityRef,
				File:     f.File,
				Line:     c.Line,
				InModule: c.InModule,
			})
		}

		for _, dep := range f.Dependencies {
			tables.Dependencies = append(tables.Dependencies, DependencyRow{
				File:   f.File,
				Target: dep.Target,
				Kind:   dep.Kind,
				Line:   dep.Line,
			})
		}
	}

	sort.Slice(tables.Files, func(i, j int) bool { return tables.Files[i].Path < tables.Files[j].Path })
	sort.SliceStable(tables.Modules, func(i, j int) bool { return tables.Modules[i].File < tables.Modules[j].File })

	return tables
}

// ModuleFiles maps each declared module name to the files declaring it.
func (t Tables) ModuleFiles() map[string][]string {
	out := make(map[string][]string)
	for _, m := range t.Modules {
		out[m.Name] = append(out[m.Name], m.File)
	}
	return out
}
