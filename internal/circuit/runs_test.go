package circuit

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
)

func pt(net, bit int) netlist.ConnectionPoint {
	return netlist.ConnectionPoint{Net: net, Bit: bit}
}

var gap = netlist.Unconnected

func TestRunsGroupsContiguousBits(t *testing.T) {
	// LSB first: bits 0-1 from net 4 bits 2-3, bit 2 open, bits 3-5 from net 7 bits 0-2.
	points := []netlist.ConnectionPoint{pt(4, 2), pt(4, 3), gap, pt(7, 0), pt(7, 1), pt(7, 2)}
	want := []Run{
		{Net: 7, Hi: 5, Lo: 3, NetHi: 2, NetLo: 0},
		{Net: -1, Hi: 2, Lo: 2},
		{Net: 4, Hi: 1, Lo: 0, NetHi: 3, NetLo: 2},
	}
	if got := Runs(points); !reflect.DeepEqual(got, want) {
		t.Fatalf("Runs = %+v, want %+v", got, want)
	}
}

func TestRunsSplitsOnReversedOrder(t *testing.T) {
	// Bit order reversed relative to the net: every bit is its own run.
	points := []netlist.ConnectionPoint{pt(1, 1), pt(1, 0)}
	if got := Runs(points); len(got) != 2 {
		t.Fatalf("expected 2 runs, got %+v", got)
	}
}

func TestRunBitsText(t *testing.T) {
	if got := (Run{Net: -1, Hi: 1, Lo: 1}).Bits(); got != "bit 1" {
		t.Errorf("Bits = %q", got)
	}
	if got := (Run{Net: -1, Hi: 7, Lo: 4}).Bits(); got != "bits 7 downto 4" {
		t.Errorf("Bits = %q", got)
	}
}

// Re-expanding the runs must give back every point, and no two adjacent
// runs may be mergeable.
func TestRunsCoalescingLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		width := 1 + rng.Intn(24)
		points := make([]netlist.ConnectionPoint, width)
		for i := range points {
			switch {
			case rng.Intn(5) == 0:
				points[i] = gap
			case i > 0 && points[i-1].Connected() && rng.Intn(3) > 0:
				points[i] = pt(points[i-1].Net, points[i-1].Bit+1)
			default:
				points[i] = pt(rng.Intn(3), rng.Intn(8))
			}
		}

		runs := Runs(points)
		if got := Expand(runs, width); !reflect.DeepEqual(got, points) {
			t.Fatalf("Expand(Runs(%v)) = %v", points, got)
		}
		covered := 0
		for i, r := range runs {
			covered += r.Width()
			if i == 0 {
				continue
			}
			prev := runs[i-1]
			if prev.Lo != r.Hi+1 {
				t.Fatalf("runs not adjacent: %+v then %+v", prev, r)
			}
			if prev.Gap() && r.Gap() {
				t.Fatalf("two adjacent gap runs in %+v", runs)
			}
			if !prev.Gap() && prev.Net == r.Net && prev.NetLo == r.NetHi+1 {
				t.Fatalf("mergeable runs %+v and %+v", prev, r)
			}
		}
		if covered != width {
			t.Fatalf("runs cover %d of %d bits", covered, width)
		}
	}
}
