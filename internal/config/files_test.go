package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("-- "+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "top.vhd", "ip/uart/uart.v", "ip/uart/notes.txt", "ip/vendor/pll.vhd", "sim/tb.sv")

	cfg := DefaultConfig()
	cfg.BlackBox.Exclude = []string{"ip/vendor/*"}
	files, err := cfg.SourceFiles(root)
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}

	want := []string{
		filepath.Join(root, "ip/uart/uart.v"),
		filepath.Join(root, "sim/tb.sv"),
		filepath.Join(root, "top.vhd"),
	}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Fatalf("SourceFiles = %v, want %v", files, want)
	}
}

func TestResolveSource(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "rtl/blink.vhd", "ip/a/fifo.v", "ip/b/fifo.v")

	cfg := DefaultConfig()

	tests := []struct {
		name    string
		want    string
		wantErr string
	}{
		{name: "rtl/blink.vhd", want: filepath.Join(root, "rtl/blink.vhd")},
		{name: "blink.vhd", want: filepath.Join(root, "rtl/blink.vhd")},
		{name: "fifo.v", wantErr: "ambiguous"},
		{name: "missing.vhd", wantErr: "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.ResolveSource(root, tt.name)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v (%s)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveSource: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ResolveSource = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMatchSuffix(t *testing.T) {
	tests := []struct {
		path, pattern string
		want          bool
	}{
		{"a/b/c.vhd", "*.vhd", true},
		{"a/b/c.vhd", "b/*.vhd", true},
		{"a/b/c.vhd", "x/*.vhd", false},
		{"c.v", "*.vhd", false},
	}
	for _, tt := range tests {
		if got := matchSuffix(filepath.FromSlash(tt.path), filepath.FromSlash(tt.pattern)); got != tt.want {
			t.Errorf("matchSuffix(%s, %s) = %t", tt.path, tt.pattern, got)
		}
	}
}
