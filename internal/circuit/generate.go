package circuit

import (
	"sort"

	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// Set is an immutable set of module names.
type Set struct {
	names map[string]bool
}

func NewSet(names ...string) Set {
	s := Set{names: make(map[string]bool, len(names))}
	for _, n := range names {
		s.names[n] = true
	}
	return s
}

func (s Set) Has(name string) bool {
	return s.names[name]
}

// With returns a copy of s that also holds name.
func (s Set) With(name string) Set {
	out := Set{names: make(map[string]bool, len(s.names)+1)}
	for n := range s.names {
		out.names[n] = true
	}
	out.names[name] = true
	return out
}

func (s Set) Len() int {
	return len(s.names)
}

// Names returns the members in name order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Output is the result of one generation walk.
type Output struct {
	// Modules in generation order: a circuit, then its leaf components,
	// then its subcircuits depth first.
	Modules []emit.Module
	// Written holds every module name produced or already present.
	Written Set
	// Errors are the fatal errors, one per discarded module.
	Errors []error
}

// Generate walks the hierarchy from the top circuit. Modules already in
// written are not generated again; each distinct name is produced once.
func Generate(ctx components.Context, layouts map[string]Layout, written Set) Output {
	out := Output{Written: written}
	if top := ctx.Design.TopCircuit(); top != nil {
		out.visit(ctx.WithCircuit(top), layouts)
	}
	return out
}

func (o *Output) fail(err error) {
	o.Errors = append(o.Errors, err)
}

func (o *Output) visit(ctx components.Context, layouts map[string]Layout) {
	c := ctx.Circuit
	name, ok := ctx.Names.Circuit(c.Name)
	if !ok || o.Written.Has(name) {
		return
	}
	o.Written = o.Written.With(name)

	if c.BlackBox != nil {
		m, err := BlackBoxModule(ctx, name)
		if err != nil {
			o.fail(err)
			return
		}
		o.Modules = append(o.Modules, m)
		return
	}

	if m, err := Module(ctx, layouts); err != nil {
		o.fail(err)
	} else {
		o.Modules = append(o.Modules, m)
	}

	for _, comp := range c.Components {
		if components.IsSpecial(comp.Kind) {
			continue
		}
		module, ok := ctx.Names.Module(c.Name, comp.ID)
		if !ok || o.Written.Has(module) {
			continue
		}
		o.Written = o.Written.With(module)
		m, err := components.Generate(ctx, comp)
		if err != nil {
			o.fail(err)
			continue
		}
		o.Modules = append(o.Modules, m)
	}

	for _, comp := range c.ComponentsOf(netlist.KindSubcircuit) {
		if sub, ok := ctx.Design.Circuit(comp.Circuit); ok {
			o.visit(ctx.WithCircuit(sub), layouts)
		}
	}
}

// BlackBoxModule copies the external source of a black-box circuit. The
// source must be written in the output language and declare the
// circuit's module name.
func BlackBoxModule(ctx components.Context, module string) (emit.Module, error) {
	bb := ctx.Circuit.BlackBox
	if bb.Language != "" {
		lang, err := hdl.ParseLanguage(bb.Language)
		if err != nil {
			return emit.Module{}, report.AsFatal(module, err)
		}
		if lang != ctx.Lang {
			return emit.Module{}, report.Fatalf(module, "external source %s is %s, output is %s", bb.File, lang, ctx.Lang)
		}
	}
	if ctx.Resolve == nil {
		return emit.Module{}, report.Fatalf(module, "no search path to locate %s", bb.File)
	}
	path, err := ctx.Resolve(bb.File)
	if err != nil {
		return emit.Module{}, report.AsFatal(module, err)
	}
	content, err := emit.Copy(module, path)
	if err != nil {
		return emit.Module{}, err
	}
	facts := extractor.ExtractText(path, ctx.Lang, content)
	if !facts.Declares(module) {
		return emit.Module{}, report.Fatalf(module, "external source %s declares %v, expected %s", bb.File, facts.EntityNames(), module)
	}
	return emit.Module{Name: module, Subdir: category, Verbatim: content}, nil
}
