package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimingEnv overrides the timing log path.
const TimingEnv = "HDLGEN_TIMING_JSONL"

type timingEvent struct {
	Stage      string  `json:"stage"`
	Kind       string  `json:"kind"`
	Module     string  `json:"module,omitempty"`
	Status     string  `json:"status,omitempty"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

// timingRecorder appends one JSON line per finished stage or module.
type timingRecorder struct {
	enabled bool
	start   time.Time
	mu      sync.Mutex
	events  []timingEvent
	file    *os.File
	enc     *json.Encoder
	err     error
}

func newTimingRecorder(start time.Time, path string) *timingRecorder {
	tr := &timingRecorder{start: start}
	if path == "" {
		return tr
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tr.err = err
		return tr
	}
	f, err := os.Create(path)
	if err != nil {
		tr.err = err
		return tr
	}
	tr.enabled = true
	tr.file = f
	tr.enc = json.NewEncoder(f)
	return tr
}

func (tr *timingRecorder) Err() error {
	if tr == nil {
		return nil
	}
	return tr.err
}

func (tr *timingRecorder) Close() {
	if tr == nil || tr.file == nil {
		return
	}
	_ = tr.file.Close()
}

func (tr *timingRecorder) record(stage, kind, module, status string, start time.Time, duration time.Duration) {
	if tr == nil || !tr.enabled {
		return
	}
	startMS := durationToMS(start.Sub(tr.start))
	durationMS := durationToMS(duration)
	event := timingEvent{
		Stage:      stage,
		Kind:       kind,
		Module:     module,
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	tr.mu.Lock()
	tr.events = append(tr.events, event)
	if tr.enc != nil {
		_ = tr.enc.Encode(event)
	}
	tr.mu.Unlock()
}

func (tr *timingRecorder) RecordStage(stage string, start time.Time, duration time.Duration, status string) {
	tr.record(stage, "stage", "", status, start, duration)
}

func (tr *timingRecorder) RecordModule(stage, module, status string, start time.Time, duration time.Duration) {
	tr.record(stage, "module", module, status, start, duration)
}

func durationToMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}

// resolveTimingPath picks the timing log: the environment first, then the
// explicit path, then timing.jsonl in the output directory when enabled.
func (p *Pipeline) resolveTimingPath(outDir, configured string) string {
	if envPath := os.Getenv(TimingEnv); envPath != "" {
		return envPath
	}
	if p.TimingPath != "" {
		return p.TimingPath
	}
	if configured != "" {
		return configured
	}
	if p.Timing {
		return filepath.Join(outDir, "timing.jsonl")
	}
	return ""
}
