package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
	"github.com/robert-at-pretension-io/hdlgen/internal/pipeline"
	"github.com/robert-at-pretension-io/hdlgen/internal/validator"
)

func main() {
	output := flag.String("output", "", "write facts JSON to file (default: stdout)")
	flag.StringVar(output, "o", "", "write facts JSON to file (shorthand)")
	deltaFrom := flag.String("delta-from", "", "previous facts JSON to compute delta from")
	deltaOut := flag.String("delta-out", "", "write delta JSON to file (requires --delta-from)")
	only := flag.String("files", "", "comma-separated tree paths to keep in the facts and delta")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hdlgen-facts [--output file] [--files a,b] [--delta-from prev.json --delta-out delta.json] <outdir>")
		os.Exit(1)
	}

	tables, err := pipeline.ScanTree(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	v, err := validator.NewFactsValidator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if errs := v.ValidationErrors(tables); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "Error: %s\n", e)
		}
		os.Exit(1)
	}

	files := fileSet(*only)
	shown := tables
	if files != nil {
		shown = facts.FilterTablesByFiles(tables, files)
	}

	if *output != "" {
		if err := writeJSON(*output, shown); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing facts: %v\n", err)
			os.Exit(1)
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(shown); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding facts: %v\n", err)
			os.Exit(1)
		}
	}

	if *deltaFrom != "" || *deltaOut != "" {
		if *deltaFrom == "" || *deltaOut == "" {
			fmt.Fprintln(os.Stderr, "Error: --delta-from and --delta-out must be used together")
			os.Exit(1)
		}
		prev, err := readTables(*deltaFrom)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading delta-from: %v\n", err)
			os.Exit(1)
		}
		delta := facts.ComputeDelta(prev, tables)
		if files != nil {
			delta = facts.FilterDeltaByFiles(delta, files)
		}
		if err := writeJSON(*deltaOut, delta); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing delta: %v\n", err)
			os.Exit(1)
		}
	}
}

// fileSet parses the --files list. An empty list keeps every file.
func fileSet(list string) map[string]bool {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	files := map[string]bool{}
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			files[filepath.ToSlash(f)] = true
		}
	}
	return files
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
