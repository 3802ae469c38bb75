package circuit

import (
	"fmt"

	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

// Run is a maximal range of port bits Hi..Lo fed by the consecutive net
// bits NetHi..NetLo of one net. A gap run has Net < 0 and no net range.
type Run struct {
	Net   int
	Hi    int
	Lo    int
	NetHi int
	NetLo int
}

func (r Run) Gap() bool {
	return r.Net < 0
}

func (r Run) Width() int {
	return r.Hi - r.Lo + 1
}

// Bits names the port range for messages: "bit 3" or "bits 5 downto 2".
func (r Run) Bits() string {
	if r.Hi == r.Lo {
		return fmt.Sprintf("bit %d", r.Lo)
	}
	return fmt.Sprintf("bits %d downto %d", r.Hi, r.Lo)
}

// Runs groups points, scanning from the most significant bit down. A run
// continues while the net stays the same and each bit is one below the
// previous one; consecutive unconnected bits form one gap run.
func Runs(points []netlist.ConnectionPoint) []Run {
	var runs []Run
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		if n := len(runs); n > 0 {
			r := &runs[n-1]
			if !p.Connected() && r.Gap() {
				r.Lo = i
				continue
			}
			if p.Connected() && r.Net == p.Net && p.Bit == r.NetLo-1 {
				r.Lo = i
				r.NetLo = p.Bit
				continue
			}
		}
		if !p.Connected() {
			runs = append(runs, Run{Net: -1, Hi: i, Lo: i})
			continue
		}
		runs = append(runs, Run{Net: p.Net, Hi: i, Lo: i, NetHi: p.Bit, NetLo: p.Bit})
	}
	return runs
}

// Expand turns runs back into one point per bit.
func Expand(runs []Run, width int) []netlist.ConnectionPoint {
	out := make([]netlist.ConnectionPoint, width)
	for i := range out {
		out[i] = netlist.Unconnected
	}
	for _, r := range runs {
		if r.Gap() {
			continue
		}
		for i := r.Lo; i <= r.Hi; i++ {
			out[i] = netlist.ConnectionPoint{Net: r.Net, Bit: r.NetLo + i - r.Lo}
		}
	}
	return out
}

// ref spells bits hi..lo of a signal declared with width bits.
func ref(lang hdl.Language, name string, width, hi, lo int) string {
	if width == 1 || (hi == width-1 && lo == 0) {
		return name
	}
	return lang.Slice(name, hi, lo)
}

// NetSignal is the internal signal carrying net n.
func NetSignal(n *netlist.Net) string {
	if n.IsBus() {
		return fmt.Sprintf("s_bus_%d", n.ID)
	}
	return fmt.Sprintf("s_net_%d", n.ID)
}

// netRef spells the net bits of a connected run.
func netRef(lang hdl.Language, circ *netlist.Circuit, r Run) string {
	n, _ := circ.Net(r.Net)
	return ref(lang, NetSignal(n), n.Width, r.NetHi, r.NetLo)
}
