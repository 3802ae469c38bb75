package pipeline

import (
	"path"
	"sort"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
)

// OrderFile lists the HDL files of the tree in compile order.
const OrderFile = "compile_order.txt"

type dependencyGraph map[string]map[string]bool

// buildDependencyGraph maps every HDL file to the files it needs compiled
// first: the declarations of the modules it instantiates and, for a VHDL
// architecture, its own entity.
func buildDependencyGraph(tables facts.Tables) dependencyGraph {
	graph := make(dependencyGraph)
	hdlFiles := map[string]bool{}
	for _, f := range tables.Files {
		if f.Language != "" {
			hdlFiles[f.Path] = true
			graph[f.Path] = map[string]bool{}
		}
	}
	declaring := map[string][]string{}
	for name, files := range tables.ModuleFiles() {
		declaring[strings.ToLower(name)] = files
	}
	for _, inst := range tables.Instances {
		for _, dep := range declaring[strings.ToLower(inst.Target)] {
			if dep != inst.File && graph[inst.File] != nil {
				graph[inst.File][dep] = true
			}
		}
	}
	for file := range graph {
		ext := path.Ext(file)
		base := strings.TrimSuffix(file, ext)
		if !strings.HasSuffix(base, emit.BehaviorSuffix) {
			continue
		}
		entity := strings.TrimSuffix(base, emit.BehaviorSuffix) + emit.EntitySuffix + ext
		if hdlFiles[entity] {
			graph[file][entity] = true
		}
	}
	return graph
}

// CompileOrder sorts the HDL files of tables so that every file follows
// the files it depends on. Ties are broken by path.
func CompileOrder(tables facts.Tables) []string {
	graph := buildDependencyGraph(tables)
	files := make([]string, 0, len(graph))
	for f := range graph {
		files = append(files, f)
	}
	sort.Strings(files)

	var order []string
	state := map[string]int{} // 1 visiting, 2 done
	var visit func(f string)
	visit = func(f string) {
		if state[f] != 0 {
			return
		}
		state[f] = 1
		deps := make([]string, 0, len(graph[f]))
		for d := range graph[f] {
			deps = append(deps, d)
		}
		sort.Strings(deps)
		for _, d := range deps {
			visit(d)
		}
		state[f] = 2
		order = append(order, f)
	}
	for _, f := range files {
		visit(f)
	}
	return order
}
