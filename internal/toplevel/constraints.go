package toplevel

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/robert-at-pretension-io/hdlgen/internal/board"
	"github.com/robert-at-pretension-io/hdlgen/internal/circuit"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
)

const xdcTemplate = `# Generated by hdlgen for {{.Board}}
{{with .ClockPin}}set_property PACKAGE_PIN {{.}} [get_ports {FPGA_GlobalClock}]
{{end}}{{if .Frequency}}create_clock -period {{.PeriodNS}} -name FPGA_GlobalClock [get_ports {FPGA_GlobalClock}]
{{end}}{{range .Pins}}set_property PACKAGE_PIN {{.Pin}} [get_ports { {{- .Port -}} }]
{{end}}`

const qsfTemplate = `# Generated by hdlgen for {{.Board}}
set_global_assignment -name TOP_LEVEL_ENTITY {{.Module}}
{{with .ClockPin}}set_location_assignment {{.}} -to FPGA_GlobalClock
{{end}}{{range .Pins}}set_location_assignment {{.Pin}} -to {{.Port}}
{{end}}`

const lpfTemplate = `# Generated by hdlgen for {{.Board}}
{{with .ClockPin}}LOCATE COMP "FPGA_GlobalClock" SITE "{{.}}";
{{end}}{{if .Frequency}}FREQUENCY PORT "FPGA_GlobalClock" {{.Frequency}} HZ;
{{end}}{{range .Pins}}LOCATE COMP "{{.Port}}" SITE "{{.Pin}}";
{{end}}`

var constraintFormats = map[hdl.Vendor]struct {
	ext  string
	tmpl *template.Template
}{
	hdl.Xilinx:  {".xdc", template.Must(template.New("xdc").Parse(xdcTemplate))},
	hdl.Altera:  {".qsf", template.Must(template.New("qsf").Parse(qsfTemplate))},
	hdl.Generic: {".lpf", template.Must(template.New("lpf").Parse(lpfTemplate))},
}

type constraintData struct {
	Board     string
	Module    string
	ClockPin  string
	Frequency int
	PeriodNS  string
	Pins      []Pin
}

// ConstraintFile is the name of the pin constraint file for vendor.
func ConstraintFile(vendor hdl.Vendor) string {
	f, ok := constraintFormats[vendor]
	if !ok {
		f = constraintFormats[hdl.Generic]
	}
	return circuit.WrapperModule + f.ext
}

// Constraints renders the pin placement of the wrapper in the vendor's
// constraint format. Only ports placed on a board pin are listed.
func Constraints(vendor hdl.Vendor, b *board.Board, pins []Pin) ([]byte, error) {
	f, ok := constraintFormats[vendor]
	if !ok {
		f = constraintFormats[hdl.Generic]
	}
	data := constraintData{
		Board:     b.Name,
		Module:    circuit.WrapperModule,
		ClockPin:  b.Clock.Pin,
		Frequency: b.Clock.Frequency,
	}
	if b.Clock.Frequency > 0 {
		data.PeriodNS = fmt.Sprintf("%.3f", 1e9/float64(b.Clock.Frequency))
	}
	for _, p := range pins {
		if p.Pin != "" {
			data.Pins = append(data.Pins, p)
		}
	}
	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s constraints: %w", vendor, err)
	}
	return buf.Bytes(), nil
}
