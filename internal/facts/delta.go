package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the snapshots were identical.
func (d Delta) Empty() bool {
	return d.Added.Len() == 0 && d.Removed.Len() == 0
}

// Len counts rows across every relation.
func (t Tables) Len() int {
	return len(t.Files) + len(t.Modules) + len(t.Ports) + len(t.Signals) + len(t.Instances) + len(t.Dependencies)
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Files = diffRows(from.Files, to.Files, func(r FileRow) string {
		return r.Path + "|" + r.Language + "|" + r.Role + "|" + r.Hash
	})
	out.Modules = diffRows(from.Modules, to.Modules, func(r ModuleRow) string {
		return r.Name + "|" + r.File + "|" + intKey(r.Line)
	})
	out.Ports = diffRows(from.Ports, to.Ports, func(r PortRow) string {
		return r.Module + "|" + r.Name + "|" + r.Direction + "|" + r.Type + "|" + intKey(r.Width) + "|" + r.File + "|" + intKey(r.Line)
	})
	out.Signals = diffRows(from.Signals, to.Signals, func(r SignalRow) string {
		return r.Name + "|" + r.Type + "|" + r.File + "|" + intKey(r.Line) + "|" + r.Scope
	})
	out.Instances = diffRows(from.Instances, to.Instances, func(r InstanceRow) string {
		return r.Name + "|" + r.Target + "|" + r.File + "|" + intKey(r.Line) + "|" + r.InModule
	})
	out.Dependencies = diffRows(from.Dependencies, to.Dependencies, func(r DependencyRow) string {
		return r.File + "|" + r.Target + "|" + r.Kind + "|" + intKey(r.Line)
	})

	return out
}

func emptyTables() Tables {
	return Tables{
		Files:        []FileRow{},
		Modules:      []ModuleRow{},
		Ports:        []PortRow{},
		Signals:      []SignalRow{},
		Instances:    []InstanceRow{},
		Dependencies: []DependencyRow{},
	}
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	var diff []T
	for _, row := range to {
		rowKey := key(row)
		if _, ok := fromSet[rowKey]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}

func intKey(v int) string {
	return strconv.Itoa(v)
}
