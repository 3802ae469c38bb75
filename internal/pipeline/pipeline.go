// Package pipeline drives one generation run: it loads and checks the
// inputs, generates the hierarchy with its FPGA wrapper, writes the tree
// and then inspects what was written.
//
// The stages after writing never change generated files. They read the
// tree back, check it against the policy and record the run in the
// manifest, so a rerun on an unchanged design leaves the tree as it was.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robert-at-pretension-io/hdlgen/internal/board"
	"github.com/robert-at-pretension-io/hdlgen/internal/circuit"
	"github.com/robert-at-pretension-io/hdlgen/internal/clock"
	"github.com/robert-at-pretension-io/hdlgen/internal/components"
	"github.com/robert-at-pretension-io/hdlgen/internal/config"
	"github.com/robert-at-pretension-io/hdlgen/internal/emit"
	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
	"github.com/robert-at-pretension-io/hdlgen/internal/hdl"
	"github.com/robert-at-pretension-io/hdlgen/internal/netlist"
	"github.com/robert-at-pretension-io/hdlgen/internal/policy"
	"github.com/robert-at-pretension-io/hdlgen/internal/report"
	"github.com/robert-at-pretension-io/hdlgen/internal/toplevel"
	"github.com/robert-at-pretension-io/hdlgen/internal/validator"
)

// Pipeline runs the generator for one project root.
type Pipeline struct {
	// Config is loaded from Root when nil
	Config *config.Config

	// Root is the project root; config, black-box sources and a relative
	// output directory are resolved against it
	Root string

	// Verbose output
	Verbose bool

	// JSON output mode
	JSONOutput bool

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Logger receives progress and every reported message; built from
	// Verbose and JSONOutput when nil
	Logger *logrus.Logger
}

// Result is everything a run produced.
type Result struct {
	Report       *report.Result
	Output       string
	Modules      []string
	CompileOrder []string
	Pins         []toplevel.Pin
	Policy       *policy.Result
	Tables       facts.Tables
}

// Success reports whether the run had no fatal message.
func (r *Result) Success() bool {
	return r != nil && r.Report != nil && r.Report.Success
}

// New creates a pipeline rooted at root.
func New(root string) *Pipeline {
	return &Pipeline{Root: root}
}

// NewWithConfig creates a pipeline with an already loaded configuration.
func NewWithConfig(root string, cfg *config.Config) *Pipeline {
	return &Pipeline{Root: root, Config: cfg}
}

func (p *Pipeline) logger() *logrus.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if p.JSONOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if p.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	p.Logger = log
	return log
}

// Run generates the design at designPath. boardPath may be empty. The
// returned error covers unusable inputs; problems inside the generation
// are messages of the result, which fails when any of them is fatal.
func (p *Pipeline) Run(ctx context.Context, designPath, boardPath string) (*Result, error) {
	runStart := time.Now()
	log := p.logger()
	root := p.Root
	if root == "" {
		root = "."
	}

	// 0. Load configuration if not already loaded
	if p.Config == nil {
		cfg, err := config.Load(root)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		p.Config = cfg
	}
	cfg := p.Config
	outDir := cfg.OutputDir(root)

	timing := newTimingRecorder(runStart, p.resolveTimingPath(outDir, cfg.Timing.Path))
	if err := timing.Err(); err != nil {
		log.WithError(err).Warn("timing output disabled")
	}
	defer timing.Close()
	metrics := newRunMetrics()
	stage := func(name string, start time.Time, status string) {
		d := time.Since(start)
		timing.RecordStage(name, start, d, status)
		metrics.stages.WithLabelValues(name).Observe(d.Seconds())
		log.WithFields(logrus.Fields{"stage": name, "duration": d}).Debug("stage done")
	}

	// 1. Inputs, checked before anything is generated
	stepStart := time.Now()
	design, err := loadDesign(designPath)
	if err != nil {
		return nil, err
	}
	var brd *board.Board
	if boardPath != "" {
		if brd, err = loadBoard(boardPath); err != nil {
			return nil, err
		}
		if brd.Clock.Frequency == 0 {
			brd.Clock.Frequency = cfg.Clock.Frequency
		}
	}
	stage("load", stepStart, "")

	sink := report.NewSink(log)
	lang := cfg.LanguageOf()
	gctx := components.Context{
		Lang:      lang,
		Vendor:    Vendor(cfg, brd),
		Design:    design,
		Sink:      sink,
		Templates: cfg.Templates(),
		Period:    cfg.TickPeriod(),
		Resolve: func(file string) (string, error) {
			return cfg.ResolveSource(root, file)
		},
	}
	top := design.TopCircuit()
	if gctx.Period < 0 && !top.Has(netlist.KindDynClock) {
		sink.Severe(top.Name, "", "dynamic clock mode needs a dynamic clock control in the top circuit, running at full speed")
		gctx.Period = 0
	}

	// 2. Names, then the hierarchy
	stepStart = time.Now()
	names, err := circuit.Plan(gctx)
	if err != nil {
		return nil, fmt.Errorf("plan design: %w", err)
	}
	gctx.Names = names
	layouts := circuit.Layouts(design)
	out := circuit.Generate(gctx, layouts, circuit.NewSet())
	for _, e := range out.Errors {
		sink.Fatal("", e)
	}
	modules := out.Modules
	stage("generate", stepStart, "")

	// 3. FPGA wrapper and the clock modules it instantiates
	stepStart = time.Now()
	tick := clock.TickConfig{Mode: clock.ModeOf(gctx.Period), Period: gctx.Period}
	if dyn := circuit.DynamicClock(gctx.WithCircuit(top)); dyn != nil {
		tick.DynamicBits = components.Width(dyn)
	}
	var pins []toplevel.Pin
	if wrapper, err := toplevel.Generate(gctx, layouts, toplevel.Options{Tick: tick, Board: brd}); err != nil {
		sink.Fatal(top.Name, err)
	} else {
		modules = append(modules, wrapper.Module)
		pins = wrapper.Pins
	}
	if len(design.ClockTreeIDs()) > 0 {
		modules = append(modules,
			clock.TickGenerator(lang, tick),
			clock.ClockSource(lang, tick.Mode == clock.Raw))
	}
	stage("toplevel", stepStart, "")

	// 4. Write; existing files are left alone
	stepStart = time.Now()
	writer := emit.NewWriter(outDir, lang, sink)
	for _, m := range modules {
		moduleStart := time.Now()
		before := len(writer.Written())
		status := "written"
		if err := writer.WriteModule(m); err != nil {
			sink.Fatal("", err)
			status = "failed"
		} else if len(writer.Written()) == before {
			status = "skipped"
		}
		timing.RecordModule("write", m.Name, status, moduleStart, time.Since(moduleStart))
	}
	metrics.modules.WithLabelValues("written").Add(float64(len(modules) - len(writer.Skipped())))
	metrics.modules.WithLabelValues("skipped").Add(float64(len(writer.Skipped())))
	metrics.files.Add(float64(len(writer.Written())))
	stage("write", stepStart, "")

	// 5. Read the tree back
	stepStart = time.Now()
	tree, err := collectTree(outDir, lang, modules)
	if err != nil {
		return nil, err
	}
	tables := tablesOf(tree)
	if err := validateWith(validator.NewFactsValidator, tables); err != nil {
		sink.Fatal("", fmt.Errorf("fact tables: %w", err))
	}
	order := CompileOrder(tables)
	if err := emit.WriteAtomic(filepath.Join(outDir, OrderFile), []byte(strings.Join(order, "\n")+"\n")); err != nil {
		sink.Fatal("", err)
	}
	stage("facts", stepStart, "")

	// 6. Policy over the facts
	var policyResult *policy.Result
	if cfg.PolicyEnabled() {
		stepStart = time.Now()
		engine, err := policy.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		policyResult, err = engine.Evaluate(ctx, tables)
		if err != nil {
			return nil, err
		}
		for _, v := range policyResult.Violations {
			if v.Severity == "error" {
				sink.Severe("", v.Rule, "%s:%d: %s", v.File, v.Line, v.Message)
			} else {
				sink.Warn("", v.Rule, "%s:%d: %s", v.File, v.Line, v.Message)
			}
		}
		stage("policy", stepStart, fmt.Sprintf("%d violations", len(policyResult.Violations)))
	}

	// 7. Manifest
	if cfg.ManifestEnabled() {
		stepStart = time.Now()
		prev, ok, err := LoadManifest(outDir)
		if err != nil {
			log.WithError(err).Warn("previous manifest ignored")
		}
		if ok {
			delta := facts.ComputeDelta(prev.Tables, tables)
			for _, f := range staleFiles(delta, tables) {
				sink.Warn("", "", "%s is left over from a previous run", f)
			}
			log.WithFields(logrus.Fields{"added": delta.Added.Len(), "removed": delta.Removed.Len()}).Debug("fact delta")
		}
		manifest := Manifest{Design: design.Name, Language: lang.String(), Tables: tables, CompileOrder: order}
		if err := SaveManifest(outDir, manifest); err != nil {
			sink.Fatal("", err)
		}
		stage("manifest", stepStart, "")
	}

	// 8. Report
	result := &Result{
		Output:       outDir,
		CompileOrder: order,
		Pins:         pins,
		Policy:       policyResult,
		Tables:       tables,
	}
	for _, m := range modules {
		result.Modules = append(result.Modules, m.Name)
	}
	rep := sink.Result()
	for _, f := range writer.Written() {
		rel, err := filepath.Rel(outDir, f)
		if err != nil {
			rel = f
		}
		rep.Files = append(rep.Files, filepath.ToSlash(rel))
	}
	if err := validateWith(validator.NewReportValidator, rep); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	result.Report = rep
	metrics.observeMessages(rep)
	stage("total", runStart, statusOf(rep))

	if cfg.MetricsFile != "" {
		path := cfg.MetricsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if err := metrics.write(path); err != nil {
			log.WithError(err).Warn("metrics not written")
		}
	}
	return result, nil
}

func statusOf(r *report.Result) string {
	if r.Success {
		return "ok"
	}
	return "failed"
}

func loadDesign(path string) (*netlist.Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design: %w", err)
	}
	v, err := validator.NewDesignValidator()
	if err != nil {
		return nil, err
	}
	if err := v.ValidateJSON(data); err != nil {
		return nil, fmt.Errorf("design %s: %w", path, err)
	}
	design, err := netlist.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("design %s: %w", path, err)
	}
	return design, nil
}

func loadBoard(path string) (*board.Board, error) {
	b, err := board.Load(path)
	if err != nil {
		return nil, err
	}
	if err := validateWith(validator.NewBoardValidator, b); err != nil {
		return nil, fmt.Errorf("board file %s: %w", path, err)
	}
	return b, nil
}

func validateWith(newValidator func() (*validator.Validator, error), data any) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	return v.Validate(data)
}

// Vendor reports the vendor a run with cfg and b would target.
func Vendor(cfg *config.Config, b *board.Board) hdl.Vendor {
	if b != nil && b.Vendor != "" {
		return b.VendorOf()
	}
	return cfg.VendorOf()
}
