// =============================================================================
// hdlgen - Main Entry Point
// =============================================================================
//
// hdlgen turns an elaborated circuit design into a synthesizable VHDL or
// Verilog tree, wrapped in a top level that maps the design onto an FPGA
// board.
//
// THE PIPELINE:
//   1. CUE validates the design and the board file (crash on mismatch)
//   2. Planning assigns every module, instance and port name
//   3. Generation walks the hierarchy, one file set per distinct module
//   4. The wrapper adds clock generation and the board pin mapping
//   5. The written tree is scanned back into fact tables
//   6. OPA checks the facts; the manifest records the run
//
// Files that already exist are never overwritten: clear the output
// directory to regenerate.
// =============================================================================

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/robert-at-pretension-io/hdlgen/internal/config"
	"github.com/robert-at-pretension-io/hdlgen/internal/pipeline"
)

type options struct {
	verbose    bool
	jsonOutput bool
	timing     bool
	configPath string
	args       []string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit()
		return
	case "-h", "--help", "help":
		printUsage()
		return
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}
	os.Exit(run(opts))
}

func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch a := args[i]; a {
		case "-v", "--verbose":
			opts.verbose = true
		case "--json":
			opts.jsonOutput = true
		case "--timing":
			opts.timing = true
		case "-c", "--config":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a file", a)
			}
			i++
			opts.configPath = args[i]
		default:
			opts.args = append(opts.args, a)
		}
	}
	if len(opts.args) < 1 || len(opts.args) > 2 {
		return opts, fmt.Errorf("expected <design.json> [board.yaml]")
	}
	return opts, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: hdlgen [command] [options] <design.json> [board.yaml]

Commands:
  init              Create a hdlgen.json configuration file
  <design.json>     Generate HDL for the design, optionally mapped to a board

Options:
  -v, --verbose     Enable verbose output
  -c, --config      Specify config file: hdlgen -c config.json <design.json>
  --json            Print the run report as JSON
  --timing          Write stage timings to <output>/timing.jsonl
  -h, --help        Show this help message

Configuration:
  hdlgen looks for configuration in:
    1. ./hdlgen.json
    2. ./.hdlgen.json
    3. ~/.config/hdlgen/config.json

  Run 'hdlgen init' to create a default configuration file.`)
}

func runInit() {
	configPath := config.FileName

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Output language, vendor and directory")
	fmt.Println("  - Clock mode and divider")
	fmt.Println("  - Black-box source search paths")
	fmt.Println("  - Policy rule severities")
}

func run(opts options) int {
	p := pipeline.New(".")
	p.Verbose = opts.verbose
	p.JSONOutput = opts.jsonOutput
	p.Timing = opts.timing
	if opts.configPath != "" {
		cfg, err := config.LoadFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", opts.configPath, err)
			return 1
		}
		p.Config = cfg
	}

	boardPath := ""
	if len(opts.args) == 2 {
		boardPath = opts.args[1]
	}
	result, err := p.Run(context.Background(), opts.args[0], boardPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
			return 1
		}
	} else {
		printSummary(result)
	}
	if !result.Success() {
		return 1
	}
	return 0
}

func printSummary(result *pipeline.Result) {
	r := result.Report
	fmt.Printf("Generated %d modules into %s (%d files written)\n", len(result.Modules), result.Output, len(r.Files))
	for _, pin := range result.Pins {
		if pin.Pin != "" {
			fmt.Printf("  %-20s %-6s %s\n", pin.Port, pin.Pin, pin.Source)
		}
	}
	fmt.Printf("%d warnings, %d severe warnings, %d fatal errors\n", r.Counts["warning"], r.Counts["severe"], r.Counts["fatal"])
	if r.Success {
		fmt.Printf("Compile order written to %s\n", pipeline.OrderFile)
	}
}
