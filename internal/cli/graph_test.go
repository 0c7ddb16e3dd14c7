package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/patterndb/pkg/errors"
)

func TestGraphFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", formatDOT, false},
		{"", "out.svg", formatSVG, false},
		{"", "out.SVG", formatSVG, false},
		{"", "out.gv", formatDOT, false},
		{"DOT", "out.svg", formatDOT, false},
		{"svg", "", formatSVG, false},
		{"png", "", "", true},
	}
	for _, tt := range tests {
		got, err := graphFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("graphFormat(%q, %q) error = %v", tt.format, tt.output, err)
			continue
		}
		if got != tt.want {
			t.Errorf("graphFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func TestGraphCommandWritesDOT(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "orient.dot")
	if err := execute(t, "graph", "-e", "corner-orient", "-d", "1", "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, `digraph "corner-orient"`) {
		t.Errorf("unexpected header: %.40q", dot)
	}
	if !strings.Contains(dot, "->") {
		t.Error("depth 1 graph should have edges")
	}
}

func TestGraphCommandRejectsDepth(t *testing.T) {
	err := execute(t, "graph", "-d", "9")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}
