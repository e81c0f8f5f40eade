package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces trimmed", "svg, outline", []string{"svg", "outline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"from input", "", "prog.json", "prog"},
		{"from layout input", "", "prog.layout.json", "prog"},
		{"output wins", "out/tree.svg", "prog.json", "out/tree"},
		{"dot output", "tree.dot.svg", "prog.json", "tree"},
		{"no extension", "tree", "prog.json", "tree"},
		{"bare extension kept", ".json", "", ".json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestKnownExtensionsLongestFirst(t *testing.T) {
	exts := knownExtensions()
	li := slices.Index(exts, "layout.json")
	ji := slices.Index(exts, "json")
	if li < 0 || ji < 0 || li > ji {
		t.Errorf("knownExtensions() = %v, want layout.json before json", exts)
	}
	for i := 1; i < len(exts); i++ {
		if len(exts[i]) > len(exts[i-1]) {
			t.Errorf("knownExtensions() not sorted by length: %v", exts)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "prog.json")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"svg":     []byte("<svg/>"),
			"outline": []byte("Analysis\n"),
			"json":    []byte("{}"),
		},
		formats: []string{"svg", "outline", "json"},
		input:   input,
		nodes:   3,
		depth:   2,
	})
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}

	for name, want := range map[string]string{
		"prog.svg":         "<svg/>",
		"prog.txt":         "Analysis\n",
		"prog.layout.json": "{}",
	} {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("read %s: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestWriteArtifactsSingleOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "diagram.svg")
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg"},
		input:     "prog.json",
		output:    out,
	})
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected %s: %v", out, err)
	}
}

func TestOptionFlagsPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "astlens.toml")
	config := `
[layout]
threshold = 5

[viewport]
width = 640
height = 480
`
	if err := os.WriteFile(cfgPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		args          []string
		wantThreshold int
		wantWidth     float64
		wantHeight    float64
	}{
		{"config only", []string{"--config", cfgPath}, 5, 640, 480},
		{"flag overrides config", []string{"--config", cfgPath, "--threshold", "2", "--width", "100"}, 2, 100, 480},
		{"defaults without config", nil, 3, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f optionFlags
			cmd := &cobra.Command{Use: "test"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags: %v", err)
			}

			opts, err := f.options(cmd)
			if err != nil {
				t.Fatalf("options: %v", err)
			}
			if opts.Layout.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %d, want %d", opts.Layout.Threshold, tt.wantThreshold)
			}
			if opts.Width != tt.wantWidth || opts.Height != tt.wantHeight {
				t.Errorf("size = %gx%g, want %gx%g", opts.Width, opts.Height, tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestOptionFlagsBadConfig(t *testing.T) {
	var f optionFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.options(cmd); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestServeURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:9000", "http://localhost:9000"},
		{"127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"[::1]:8080", "http://[::1]:8080"},
		{"example", "http://example"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := serveURL(tt.addr); got != tt.want {
				t.Errorf("serveURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestStatsLine(t *testing.T) {
	fresh := statsLine(12, 4, false)
	cached := statsLine(12, 4, true)
	for _, want := range []string{"12 nodes", "depth 4"} {
		if !strings.Contains(fresh, want) {
			t.Errorf("statsLine missing %q: %q", want, fresh)
		}
	}
	if !strings.Contains(fresh, iconFresh) || !strings.Contains(cached, iconCached) {
		t.Errorf("cache status not shown: %q / %q", fresh, cached)
	}
}
