// Package report is the single sink every generation step reports through.
// Warnings and severe warnings are recorded and generation continues; fatal
// conditions travel as *FatalError values and are recorded by the caller
// that decides to skip the affected module.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type Severity int

const (
	Warning Severity = iota
	SevereWarning
	Fatal
)

func (s Severity) String() string {
	switch s {
	case SevereWarning:
		return "severe"
	case Fatal:
		return "fatal"
	}
	return "warning"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warning":
		*s = Warning
	case "severe":
		*s = SevereWarning
	case "fatal":
		*s = Fatal
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Message is one recorded report.
type Message struct {
	Severity Severity `json:"severity"`
	Circuit  string   `json:"circuit,omitempty"`
	Module   string   `json:"module,omitempty"`
	Text     string   `json:"text"`
}

func (m Message) String() string {
	where := m.Module
	if where == "" {
		where = m.Circuit
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", m.Severity, m.Text)
	}
	return fmt.Sprintf("%s: %s: %s", m.Severity, where, m.Text)
}

// FatalError aborts the generation of one module.
type FatalError struct {
	Module string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Module == "" {
		return e.Err.Error()
	}
	return e.Module + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatalf builds a FatalError for module.
func Fatalf(module, format string, args ...any) *FatalError {
	return &FatalError{Module: module, Err: fmt.Errorf(format, args...)}
}

// AsFatal returns err as a FatalError, wrapping plain errors.
func AsFatal(module string, err error) *FatalError {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe
	}
	return &FatalError{Module: module, Err: err}
}

// Sink accumulates the messages of one run and logs each as it arrives.
type Sink struct {
	log      *logrus.Logger
	messages []Message
}

// NewSink logs through logger; nil discards log output but still records.
func NewSink(logger *logrus.Logger) *Sink {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Sink{log: logger}
}

// Logger exposes the underlying logger for stage-level debug output.
func (s *Sink) Logger() *logrus.Logger {
	return s.log
}

func (s *Sink) Warn(circuit, module, format string, args ...any) {
	s.add(Message{Severity: Warning, Circuit: circuit, Module: module, Text: fmt.Sprintf(format, args...)})
}

func (s *Sink) Severe(circuit, module, format string, args ...any) {
	s.add(Message{Severity: SevereWarning, Circuit: circuit, Module: module, Text: fmt.Sprintf(format, args...)})
}

// Fatal records err as a fatal message and returns it unchanged.
func (s *Sink) Fatal(circuit string, err error) error {
	if err == nil {
		return nil
	}
	fe := AsFatal("", err)
	s.add(Message{Severity: Fatal, Circuit: circuit, Module: fe.Module, Text: fe.Err.Error()})
	return err
}

func (s *Sink) add(m Message) {
	s.messages = append(s.messages, m)
	entry := s.log.WithFields(logrus.Fields{
		"severity": m.Severity.String(),
		"module":   m.Module,
		"circuit":  m.Circuit,
	})
	switch m.Severity {
	case Fatal:
		entry.Error(m.Text)
	default:
		entry.Warn(m.Text)
	}
}

// Messages returns a copy of everything recorded so far.
func (s *Sink) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Sink) Count(sev Severity) int {
	n := 0
	for _, m := range s.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// Result is the JSON summary of a run.
type Result struct {
	Success  bool           `json:"success"`
	Counts   map[string]int `json:"counts"`
	Messages []Message      `json:"messages"`
	Files    []string       `json:"files,omitempty"`
}

// Result summarizes the sink. A run succeeds only without fatal messages.
func (s *Sink) Result() *Result {
	r := &Result{
		Counts:   map[string]int{},
		Messages: s.Messages(),
	}
	for _, sev := range []Severity{Warning, SevereWarning, Fatal} {
		r.Counts[sev.String()] = s.Count(sev)
	}
	r.Success = r.Counts[Fatal.String()] == 0
	return r
}
