// Package naming derives module and signal identifiers that are legal in
// both VHDL and Verilog.
package naming

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

// Fallback replaces an empty label in a label-specific template.
const Fallback = "UNLABELED"

// Trigger disciplines as spelled by ${TRIGGER}.
const (
	RisingEdge  = "RISING_EDGE"
	FallingEdge = "FALLING_EDGE"
	LevelHigh   = "LEVEL_HIGH"
	LevelLow    = "LEVEL_LOW"
)

// TriggerToken maps a component trigger attribute to its ${TRIGGER} value.
func TriggerToken(trigger string) string {
	switch strings.ToLower(trigger) {
	case "falling", "falling_edge":
		return FallingEdge
	case "high", "level_high":
		return LevelHigh
	case "low", "level_low":
		return LevelLow
	}
	return RisingEdge
}

// Vars are the substitution values of one component variant.
type Vars struct {
	Circuit string
	Label   string
	Width   int
	Trigger string
}

// Issue describes a recoverable problem found while expanding a template.
type Issue string

// Expand substitutes the tokens of template and sanitizes the result.
// labelRequired marks templates whose output is specific to one label; an
// empty label then yields the Fallback and an Issue.
func Expand(template string, v Vars, labelRequired bool) (string, Issue) {
	var issue Issue
	label := v.Label
	if strings.Contains(template, "${LABEL}") && strings.TrimSpace(label) == "" {
		label = Fallback
		if labelRequired {
			issue = Issue(fmt.Sprintf("empty label substituted in %q, using %s", template, Fallback))
		}
	}
	bus := ""
	if v.Width > 1 {
		bus = "_BUS"
	}
	r := strings.NewReplacer(
		"${CIRCUIT}", v.Circuit,
		"${LABEL}", label,
		"${WIDTH}", strconv.Itoa(v.Width),
		"${BUS}", bus,
		"${TRIGGER}", TriggerToken(v.Trigger),
	)
	return Sanitize(r.Replace(template)), issue
}

// Sanitize maps any text to an identifier: letters, digits and single
// underscores, starting with a letter. Reserved words get an L_ prefix.
func Sanitize(name string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.TrimRight(sb.String(), "_")
	if out == "" {
		return "L_" + Fallback
	}
	if !unicode.IsLetter(rune(out[0])) || hdl.IsReserved(out) {
		out = "L_" + out
	}
	return out
}

// Unique returns name, or name with the lowest free numeric suffix, so
// that it is not in taken (compared case-insensitively). The chosen
// name is added to taken.
func Unique(taken map[string]bool, name string) string {
	candidate := name
	for i := 1; taken[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	taken[strings.ToLower(candidate)] = true
	return candidate
}
