package hdl

import (
	"fmt"
	"strings"
)

const indentUnit = "   "

// Builder accumulates source lines at the current indentation depth.
type Builder struct {
	lang  Language
	lines []string
	depth int
}

func NewBuilder(lang Language) *Builder {
	return &Builder{lang: lang}
}

func (b *Builder) Language() Language {
	return b.lang
}

// Add appends one formatted line. Embedded newlines produce several lines,
// each indented.
func (b *Builder) Add(format string, args ...any) *Builder {
	return b.Text(fmt.Sprintf(format, args...))
}

// Text appends already rendered text, one line per embedded newline.
func (b *Builder) Text(text string) *Builder {
	for _, line := range strings.Split(text, "\n") {
		b.addLine(line)
	}
	return b
}

// AddLines appends pre-rendered lines, indenting each one.
func (b *Builder) AddLines(lines ...string) *Builder {
	for _, line := range lines {
		b.addLine(line)
	}
	return b
}

func (b *Builder) addLine(line string) {
	if strings.TrimSpace(line) == "" {
		b.lines = append(b.lines, "")
		return
	}
	b.lines = append(b.lines, strings.Repeat(indentUnit, b.depth)+line)
}

// Empty appends a blank line unless the buffer already ends with one.
func (b *Builder) Empty() *Builder {
	if len(b.lines) == 0 || b.lines[len(b.lines)-1] != "" {
		b.lines = append(b.lines, "")
	}
	return b
}

func (b *Builder) Indent() *Builder {
	b.depth++
	return b
}

func (b *Builder) Dedent() *Builder {
	if b.depth > 0 {
		b.depth--
	}
	return b
}

// Comment appends a single dialect comment line.
func (b *Builder) Comment(format string, args ...any) *Builder {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return b.addComment(text)
}

func (b *Builder) addComment(text string) *Builder {
	for _, line := range strings.Split(text, "\n") {
		b.addLine(strings.TrimRight(b.lang.CommentPrefix()+" "+line, " "))
	}
	return b
}

// Remark appends a framed comment block used as a section header.
func (b *Builder) Remark(lines ...string) *Builder {
	rule := b.lang.CommentPrefix() + strings.Repeat("=", 74)
	b.addLine(rule)
	for _, line := range lines {
		b.addLine(b.lang.CommentPrefix() + "== " + line)
	}
	b.addLine(rule)
	return b
}

// Lines returns a copy of the accumulated lines.
func (b *Builder) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Builder) Len() int {
	return len(b.lines)
}

func (b *Builder) String() string {
	return Join(b.lines)
}

// Join renders lines as file text with a trailing newline.
func Join(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
