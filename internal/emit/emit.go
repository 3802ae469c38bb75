// Package emit places generated modules in the output tree. It never
// overwrites: a module whose files already exist is skipped with a
// warning, so a rerun against a populated tree changes nothing.
package emit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// VHDL splits every module into an interface file and a behavior file.
const (
	EntitySuffix   = "_entity"
	BehaviorSuffix = "_behavior"
)

// ErrExists is returned when a target file is already present.
var ErrExists = errors.New("file already exists")

// File is an auxiliary file written next to a module, such as a memory
// preload payload or a pin constraint file. Name includes the extension.
type File struct {
	Name    string
	Content []byte
}

// Module is the complete output of one distinct module variant.
type Module struct {
	Name   string
	Subdir string
	// Entity is the VHDL interface file; unused for Verilog.
	Entity []string
	// Behavior is the VHDL architecture or the whole Verilog module.
	Behavior []string
	// Verbatim replaces Entity and Behavior with externally authored text.
	Verbatim []byte
	Extras   []File
}

// Path builds <root>/<language>/<subdir>/<name><suffix>.<ext>.
func Path(root string, lang hdl.Language, subdir, name, suffix string) string {
	return filepath.Join(root, lang.Dir(), subdir, name+suffix+"."+lang.Ext())
}

// Dir is the directory holding a subdir's files.
func Dir(root string, lang hdl.Language, subdir string) string {
	return filepath.Join(root, lang.Dir(), subdir)
}

type target struct {
	path    string
	content []byte
}

// Targets lists the files of m in write order: interface before behavior,
// extras last.
func Targets(root string, lang hdl.Language, m Module) []string {
	var out []string
	for _, t := range targets(root, lang, m) {
		out = append(out, t.path)
	}
	return out
}

func targets(root string, lang hdl.Language, m Module) []target {
	var out []target
	switch {
	case m.Verbatim != nil:
		out = append(out, target{Path(root, lang, m.Subdir, m.Name, ""), m.Verbatim})
	case lang == hdl.VHDL:
		if len(m.Entity) > 0 {
			out = append(out, target{Path(root, lang, m.Subdir, m.Name, EntitySuffix), []byte(hdl.Join(m.Entity))})
		}
		out = append(out, target{Path(root, lang, m.Subdir, m.Name, BehaviorSuffix), []byte(hdl.Join(m.Behavior))})
	default:
		out = append(out, target{Path(root, lang, m.Subdir, m.Name, ""), []byte(hdl.Join(m.Behavior))})
	}
	for _, f := range m.Extras {
		out = append(out, target{filepath.Join(Dir(root, lang, m.Subdir), f.Name), f.Content})
	}
	return out
}

// Writer emits modules below Root for one language.
type Writer struct {
	Root string
	Lang hdl.Language
	Sink *report.Sink

	written []string
	skipped []string
}

func NewWriter(root string, lang hdl.Language, sink *report.Sink) *Writer {
	return &Writer{Root: root, Lang: lang, Sink: sink}
}

// WriteModule writes every file of m, or none of them when any already
// exists. The existing case is reported once per module as a warning.
func (w *Writer) WriteModule(m Module) error {
	if len(m.Behavior) == 0 && m.Verbatim == nil {
		return report.Fatalf(m.Name, "generated body is empty")
	}
	ts := targets(w.Root, w.Lang, m)
	for _, t := range ts {
		existing, err := os.ReadFile(t.path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return report.AsFatal(m.Name, fmt.Errorf("inspect %s: %w", t.path, err))
		}
		w.skipped = append(w.skipped, m.Name)
		if bytes.Equal(existing, t.content) {
			w.Sink.Warn("", m.Name, "%s already exists, left untouched", w.rel(t.path))
		} else {
			w.Sink.Warn("", m.Name, "%s already exists with different content, left untouched (clear the output directory to regenerate)", w.rel(t.path))
		}
		return nil
	}
	for _, t := range ts {
		if err := WriteFile(t.path, t.content); err != nil {
			return report.AsFatal(m.Name, err)
		}
		w.written = append(w.written, t.path)
	}
	return nil
}

// Written lists every file written so far, in order.
func (w *Writer) Written() []string {
	return append([]string(nil), w.written...)
}

// Skipped lists modules left untouched because their files existed.
func (w *Writer) Skipped() []string {
	return append([]string(nil), w.skipped...)
}

func (w *Writer) rel(path string) string {
	if r, err := filepath.Rel(w.Root, path); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return path
}

// WriteFile creates path with content. An existing file is never touched.
func WriteFile(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	return WriteAtomic(path, content)
}

// WriteAtomic replaces path with content through a temporary file in the
// same directory.
func WriteAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("temp output file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}

// Copy reads an external source for a black box. An unreadable source is
// fatal for the module that needs it.
func Copy(module, src string) ([]byte, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, report.AsFatal(module, fmt.Errorf("read external HDL source: %w", err))
	}
	return data, nil
}
