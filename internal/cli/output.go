package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/astlens/pkg/pipeline"
)

// artifactWriteParams describes one batch of rendered outputs.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	depth     int
	cacheHit  bool
}

// writeArtifacts writes each artifact to its own file and prints a summary.
//
// With a single format the file is opts.output (or derived from the input
// name); "-" writes to stdout. With several formats, output is used as the
// base path and each file gets its format's extension.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "-" {
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	base := basePath(p.output, p.input)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := base + "." + pipeline.Extension(format)
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %s", pluralFiles(len(paths)))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.nodes, p.depth, p.cacheHit)
	return nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns os.Stdout for "" or "-" and creates the file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path. Without an output it uses the
// input path. Any known output or input extension is stripped, so
// "prog.json", "prog.layout.json" and "prog.svg" all give "prog".
func basePath(output, input string) string {
	path := output
	if path == "" {
		path = input
	}
	for _, ext := range knownExtensions() {
		if trimmed, ok := strings.CutSuffix(path, "."+ext); ok && trimmed != "" {
			return trimmed
		}
	}
	return path
}

// knownExtensions lists output extensions plus the input's "json",
// longest first so "layout.json" wins over "json".
func knownExtensions() []string {
	exts := []string{"json"}
	for _, f := range pipeline.ValidFormats {
		exts = append(exts, pipeline.Extension(f))
	}
	slices.SortStableFunc(exts, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	return slices.Compact(exts)
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}
