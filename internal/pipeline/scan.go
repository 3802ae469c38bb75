package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// File roles recorded in the fact tables.
const (
	RoleEntity     = "entity"
	RoleBehavior   = "behavior"
	RoleModule     = "module"
	RoleMemory     = "memory"
	RoleConstraint = "constraint"
	RoleBlackBox   = "blackbox"
)

var constraintExts = map[string]bool{".xdc": true, ".qsf": true, ".lpf": true}

// treeFile is one file of the generated tree, present on disk.
type treeFile struct {
	Rel     string
	Role    string
	Content []byte
}

// roleOf classifies one target of m. HDL targets come first in
// emit.Targets order, extras after them.
func roleOf(lang hdl.Language, m emit.Module, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch {
	case constraintExts[ext]:
		return RoleConstraint
	case ext != "."+lang.Ext():
		return RoleMemory
	case m.Verbatim != nil:
		return RoleBlackBox
	case strings.HasSuffix(base, emit.EntitySuffix):
		return RoleEntity
	case strings.HasSuffix(base, emit.BehaviorSuffix):
		return RoleBehavior
	}
	return RoleModule
}

// collectTree lists the files of modules that exist below root, whether
// written by this run or left from an earlier one.
func collectTree(root string, lang hdl.Language, modules []emit.Module) ([]treeFile, error) {
	var out []treeFile
	seen := map[string]bool{}
	for _, m := range modules {
		for _, path := range emit.Targets(root, lang, m) {
			if seen[path] {
				continue
			}
			seen[path] = true
			content, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read generated file: %w", err)
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			out = append(out, treeFile{Rel: filepath.ToSlash(rel), Role: roleOf(lang, m, path), Content: content})
		}
	}
	return out, nil
}

// tablesOf extracts the facts of every HDL file of the tree.
func tablesOf(files []treeFile) facts.Tables {
	var ff []extractor.FileFacts
	var rows []facts.FileRow
	for _, f := range files {
		row := facts.FileRow{Path: f.Rel, Role: f.Role, Hash: hashBytes(f.Content)}
		if l, ok := extractor.LanguageOf(f.Rel); ok {
			row.Language = l.String()
			ff = append(ff, extractor.ExtractText(f.Rel, l, f.Content))
		}
		rows = append(rows, row)
	}
	return facts.BuildTables(ff, rows)
}

func hashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// roleFromName classifies a file of a tree this run did not produce. A
// VHDL file outside the entity and behavior split is taken as external.
func roleFromName(path string) string {
	lang, ok := extractor.LanguageOf(path)
	switch {
	case constraintExts[strings.ToLower(filepath.Ext(path))]:
		return RoleConstraint
	case !ok:
		return RoleMemory
	case lang == hdl.Verilog:
		return RoleModule
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch {
	case strings.HasSuffix(base, emit.EntitySuffix):
		return RoleEntity
	case strings.HasSuffix(base, emit.BehaviorSuffix):
		return RoleBehavior
	}
	return RoleBlackBox
}

// ScanTree builds the fact tables of every file below dir, skipping the
// run records and hidden files.
func ScanTree(dir string) (facts.Tables, error) {
	var files []treeFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || name == OrderFile || filepath.Ext(name) == ".jsonl" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, treeFile{Rel: rel, Role: roleFromName(rel), Content: content})
		return nil
	})
	if err != nil {
		return facts.Tables{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	return tablesOf(files), nil
}
