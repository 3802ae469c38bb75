// Package validator checks the data crossing each boundary of a run
// against embedded CUE schemas: the elaborated design and the board file
// on the way in, the fact tables handed to the policy engine, and the
// JSON report on the way out.
//
// A value that does not match its schema stops the run with every CUE
// error listed. Fix the producer, not the schema.
package validator

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed design_schema.cue board_schema.cue facts_schema.cue report_schema.cue
var schemaFS embed.FS

// Validator validates values against one definition of one schema file.
type Validator struct {
	ctx        *cue.Context
	schema     cue.Value
	definition string
}

func newValidator(file, definition string) (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema %s: %w", file, err)
	}

	schema := ctx.CompileBytes(schemaBytes, cue.Filename(file))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", file, schema.Err())
	}

	v := &Validator{ctx: ctx, schema: schema, definition: definition}
	// Definitions with comprehensions are not concrete on their own, so
	// only a missing definition is an error here.
	if def := v.def(); !def.Exists() {
		return nil, fmt.Errorf("looking up %s definition: %w", definition, def.Err())
	}
	return v, nil
}

// NewDesignValidator checks elaborated designs (#Design).
func NewDesignValidator() (*Validator, error) {
	return newValidator("design_schema.cue", "#Design")
}

// NewBoardValidator checks board pin mappings (#Board).
func NewBoardValidator() (*Validator, error) {
	return newValidator("board_schema.cue", "#Board")
}

// NewFactsValidator checks the fact tables of a generated tree (#FactTables).
func NewFactsValidator() (*Validator, error) {
	return newValidator("facts_schema.cue", "#FactTables")
}

// NewReportValidator checks the JSON run report (#Report).
func NewReportValidator() (*Validator, error) {
	return newValidator("report_schema.cue", "#Report")
}

func (v *Validator) def() cue.Value {
	return v.schema.LookupPath(cue.ParsePath(v.definition))
}

// Validate checks that data, once marshaled to JSON, conforms to the schema.
func (v *Validator) Validate(data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the schema.
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	unified, err := v.unify(jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s schema validation failed: %w", v.definition, err)
	}
	return nil
}

func (v *Validator) unify(jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling JSON as CUE: %w", dataValue.Err())
	}
	return v.def().Unify(dataValue), nil
}

// ValidationErrors returns detailed information about all validation errors.
func (v *Validator) ValidationErrors(data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	unified, err := v.unify(jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}
