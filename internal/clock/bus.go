// Package clock generates the clock distribution modules: one tick
// generator dividing the board oscillator, and one clock source per clock
// tree driving a six-signal clock bus.
//
// Every clocked component is clocked by the raw oscillator (GlobalClock)
// and enabled by the bus signal selected by its trigger discipline, so the
// whole design shares a single physical clock domain.
package clock

import "strings"

// Clock bus indices.
const (
	DerivedClock = iota
	InvertedDerivedClock
	PositiveEdgeTick
	NegativeEdgeTick
	GlobalClock
	InvertedGlobalClock

	BusWidth
)

// Module names owned by the clock subsystem. Circuits may not claim them.
const (
	TickModule   = "LogisimTickGenerator"
	SourceModule = "LogisimClockComponent"
	Category     = "base"
)

// TriggerIndex selects the clock bus signal that enables a component with
// the given trigger discipline.
func TriggerIndex(trigger string) int {
	switch strings.ToLower(trigger) {
	case "falling", "falling_edge":
		return NegativeEdgeTick
	case "high", "level_high":
		return DerivedClock
	case "low", "level_low":
		return InvertedDerivedClock
	}
	return PositiveEdgeTick
}

// Mode is the tick generator configuration, chosen once per design.
type Mode int

const (
	Raw Mode = iota
	Static
	Dynamic
)

func (m Mode) String() string {
	switch m {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return "raw"
}

// ModeOf maps a tick period to a mode: 0 is full speed, a negative period
// means the divisor is supplied at run time.
func ModeOf(period int) Mode {
	switch {
	case period < 0:
		return Dynamic
	case period == 0:
		return Raw
	}
	return Static
}
