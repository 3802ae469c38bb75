package main

import (
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
)

func TestFileSet(t *testing.T) {
	if fileSet("") != nil || fileSet("  ") != nil {
		t.Fatal("empty list must keep every file")
	}
	files := fileSet("vhdl/gates/AND_GATE_entity.vhd, vhdl/circuit/main_entity.vhd,")
	if len(files) != 2 || !files["vhdl/circuit/main_entity.vhd"] {
		t.Fatalf("files = %v", files)
	}
}

func TestFileSetRestrictsDelta(t *testing.T) {
	prev := facts.Tables{Files: []facts.FileRow{
		{Path: "vhdl/gates/AND_GATE_entity.vhd", Hash: "1"},
		{Path: "vhdl/gates/OR_GATE_entity.vhd", Hash: "1"},
	}}
	next := facts.Tables{Files: []facts.FileRow{
		{Path: "vhdl/gates/AND_GATE_entity.vhd", Hash: "2"},
	}}
	delta := facts.FilterDeltaByFiles(facts.ComputeDelta(prev, next), fileSet("vhdl/gates/AND_GATE_entity.vhd"))
	if len(delta.Added.Files) != 1 || len(delta.Removed.Files) != 1 {
		t.Fatalf("delta = %+v", delta)
	}
	if delta.Removed.Files[0].Path != "vhdl/gates/AND_GATE_entity.vhd" {
		t.Fatalf("removed = %+v", delta.Removed.Files)
	}
}
