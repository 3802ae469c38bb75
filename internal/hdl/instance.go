package hdl

// Assoc binds a formal generic or port to an actual. An empty Actual on a
// port leaves it unconnected.
type Assoc struct {
	Formal string
	Actual string
}

// Instance is one instantiation; both dialects render from the same data.
type Instance struct {
	Label    string
	Module   string
	Generics []Assoc
	Ports    []Assoc
}

// Instantiate renders inst in the dialect's instantiation syntax.
func (l Language) Instantiate(inst Instance) []string {
	if l == Verilog {
		return verilogInstance(inst)
	}
	return vhdlInstance(inst)
}

func vhdlInstance(inst Instance) []string {
	b := NewBuilder(VHDL)
	b.Add("%s : %s", inst.Label, inst.Module)
	b.Indent()
	if len(inst.Generics) > 0 {
		b.Add("generic map (")
		b.Indent()
		addVHDLAssocs(b, inst.Generics)
		b.Dedent()
		b.Add(")")
	}
	if len(inst.Ports) > 0 {
		b.Add("port map (")
		b.Indent()
		addVHDLAssocs(b, inst.Ports)
		b.Dedent()
		b.Add(")")
	}
	b.Dedent()
	lines := b.Lines()
	lines[len(lines)-1] += ";"
	return lines
}

func addVHDLAssocs(b *Builder, assocs []Assoc) {
	pad := 0
	for _, a := range assocs {
		pad = max(pad, len(a.Formal))
	}
	for i, a := range assocs {
		actual := a.Actual
		if actual == "" {
			actual = "open"
		}
		b.Add("%-*s => %s%s", pad, a.Formal, actual, separator(i, len(assocs), ","))
	}
}

func verilogInstance(inst Instance) []string {
	b := NewBuilder(Verilog)
	head := inst.Module
	if len(inst.Generics) > 0 {
		b.Text(inst.Module + " #(")
		b.Indent()
		for i, a := range inst.Generics {
			b.Add(".%s(%s)%s", a.Formal, a.Actual, separator(i, len(inst.Generics), ","))
		}
		b.Dedent()
		head = ")"
	}
	if len(inst.Ports) == 0 {
		b.Add("%s %s ();", head, inst.Label)
		return b.Lines()
	}
	b.Add("%s %s (", head, inst.Label)
	b.Indent()
	for i, a := range inst.Ports {
		b.Add(".%s(%s)%s", a.Formal, a.Actual, separator(i, len(inst.Ports), ","))
	}
	b.Dedent()
	b.Add(");")
	return b.Lines()
}
