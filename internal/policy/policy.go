// Package policy runs the embedded rego rules over the fact tables of a
// generated tree.
package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/robert-at-pretension-io/hdlgen/internal/facts"
)

//go:embed hdlgen.rego
var policySource string

// Rules lists every rule name the embedded policy can report.
var Rules = []string{"unknown_instance", "duplicate_module", "one_module_per_file", "illegal_port_name"}

// RuleConfig turns rules off and overrides their default severity.
type RuleConfig interface {
	IsRuleEnabled(rule string) bool
	GetRuleSeverity(rule, defaultSeverity string) string
}

// Engine evaluates the policy against fact tables
type Engine struct {
	query rego.PreparedEvalQuery
	rules RuleConfig
}

// Violation represents a policy violation
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Message  string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
}

// New prepares the embedded policy. rules may be nil.
func New(ctx context.Context, rules RuleConfig) (*Engine, error) {
	query, err := rego.New(
		rego.Module("hdlgen.rego", policySource),
		rego.Query("data.hdlgen.policy.violations"),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	return &Engine{query: query, rules: rules}, nil
}

// Evaluate runs the policy against tables. Violations come back sorted by
// file, line and rule.
func (e *Engine) Evaluate(ctx context.Context, tables facts.Tables) (*Result, error) {
	input, err := structToMap(tables)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	result := &Result{Violations: []Violation{}}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, _ := rs[0].Expressions[0].Value.([]interface{})
		for _, v := range violations {
			vmap, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			violation := Violation{
				Rule:     getString(vmap, "rule"),
				Severity: getString(vmap, "severity"),
				File:     getString(vmap, "file"),
				Line:     getInt(vmap, "line"),
				Message:  getString(vmap, "message"),
			}
			if e.rules != nil {
				if !e.rules.IsRuleEnabled(violation.Rule) {
					continue
				}
				violation.Severity = e.rules.GetRuleSeverity(violation.Rule, violation.Severity)
			}
			result.Violations = append(result.Violations, violation)
		}
	}

	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	for _, v := range result.Violations {
		result.Summary.TotalViolations++
		if v.Severity == "error" {
			result.Summary.Errors++
		} else {
			result.Summary.Warnings++
		}
	}
	return result, nil
}

func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
