package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/extractor"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
)

// verbatimPort is one entry of the "ports" attribute: name:dir:width.
type verbatimPort struct {
	name  string
	dir   string
	width int
}

func parseVerbatimPorts(c *netlist.Component) ([]verbatimPort, error) {
	spec := strings.TrimSpace(c.Attrs.String("ports", ""))
	if spec == "" {
		return nil, nil
	}
	var ports []verbatimPort
	for _, item := range strings.Split(spec, ",") {
		parts := strings.Split(strings.TrimSpace(item), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("%s: port %q is not name:dir:width", c, item)
		}
		w, err := strconv.Atoi(parts[2])
		if err != nil || w < 1 {
			return nil, fmt.Errorf("%s: port %s has invalid width %q", c, parts[0], parts[2])
		}
		dir := strings.ToLower(parts[1])
		switch dir {
		case "in", "out", "inout":
		default:
			return nil, fmt.Errorf("%s: port %s has invalid direction %q", c, parts[0], parts[1])
		}
		ports = append(ports, verbatimPort{name: parts[0], dir: dir, width: w})
	}
	return ports, nil
}

// verbatim wraps user-written VHDL or Verilog. The text is copied, never
// generated; its ports come from the "ports" attribute.
var verbatim = &Generator{
	Category:      "custom",
	Template:      func(*netlist.Component) string { return "${LABEL}" },
	LabelSpecific: true,
	Shape:         func(*netlist.Component) string { return "" },
	Interface: func(_ Context, c *netlist.Component) (hdl.Interface, error) {
		ports, err := parseVerbatimPorts(c)
		if err != nil {
			return hdl.Interface{}, err
		}
		var iface hdl.Interface
		for _, p := range ports {
			switch p.dir {
			case "in":
				iface.Inputs.Add(p.name, p.width)
			case "out":
				iface.Outputs.Add(p.name, p.width)
			default:
				iface.InOuts.Add(p.name, p.width)
			}
		}
		return iface, nil
	},
	Ports: func(c *netlist.Component) []PortSpec {
		ports, _ := parseVerbatimPorts(c)
		specs := make([]PortSpec, 0, len(ports))
		for _, p := range ports {
			specs = append(specs, PortSpec{Name: p.name})
		}
		return specs
	},
}

// verbatimModule loads the user text of c from the "content" attribute or
// the external "file" and checks it declares the planned module name.
func verbatimModule(ctx Context, c *netlist.Component, name string, g *Generator) (emit.Module, error) {
	lang, err := hdl.ParseLanguage(c.Attrs.String("language", ctx.Lang.String()))
	if err != nil {
		return emit.Module{}, report.AsFatal(name, fmt.Errorf("%s: %w", c, err))
	}
	if lang != ctx.Lang {
		return emit.Module{}, report.Fatalf(name, "%s is written in %s but the design is generated in %s", c, lang, ctx.Lang)
	}
	if _, err := g.Interface(ctx, c); err != nil {
		return emit.Module{}, report.AsFatal(name, err)
	}

	content := []byte(c.Attrs.String("content", ""))
	if file := c.Attrs.String("file", ""); file != "" {
		if ctx.Resolve == nil {
			return emit.Module{}, report.Fatalf(name, "%s: no search path to locate %s", c, file)
		}
		path, err := ctx.Resolve(file)
		if err != nil {
			return emit.Module{}, report.AsFatal(name, err)
		}
		if content, err = emit.Copy(name, path); err != nil {
			return emit.Module{}, err
		}
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return emit.Module{}, report.Fatalf(name, "%s has no HDL content", c)
	}
	facts := extractor.ExtractText(name, lang, content)
	if !facts.Declares(name) {
		return emit.Module{}, report.Fatalf(name, "%s declares %v, not %s", c, facts.EntityNames(), name)
	}
	return emit.Module{Name: name, Subdir: g.Category, Verbatim: content}, nil
}
