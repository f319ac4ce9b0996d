// Package docs implements the docs:* built-in workflows (§4.K): merge and
// convert. Grounded on the teacher's internal/tools/video_merge.go
// (subprocess-based merge over file paths, os.MkdirAll, uuid-named outputs)
// retargeted from ffmpeg to a configurable external PDF merge tool, plus
// github.com/ledongthuc/pdf (also present in the nevindra-oasis example) for
// page accounting — full PDF content rewriting is out of scope, so merge
// performs page counting and shells out to an external tool for the actual
// byte-level merge, matching the teacher's own ffmpeg-shelling pattern.
package docs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// Merger merges a set of PDF input files into one output file.
type Merger interface {
	Merge(ctx context.Context, inputs []string, outDir string) (string, error)
}

// Converter converts a document to another format.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputFormat, outDir string) (string, error)
}

// ExternalMerger shells out to a configurable external merge tool (e.g.
// pdftk, qpdf), mirroring the teacher's VideoMergeTool's ffmpeg invocation.
type ExternalMerger struct {
	Binary  string // default "pdftk"
	Timeout time.Duration
}

func NewExternalMerger(binary string) *ExternalMerger {
	if binary == "" {
		binary = "pdftk"
	}
	return &ExternalMerger{Binary: binary, Timeout: 2 * time.Minute}
}

func (m *ExternalMerger) Merge(ctx context.Context, inputs []string, outDir string) (string, error) {
	if len(inputs) == 0 {
		return "", fmt.Errorf("docs: merge requires at least one input")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("docs: create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, uuid.New().String()+".pdf")

	timeout := m.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{}, inputs...)
	args = append(args, "cat", "output", outPath)
	cmd := exec.CommandContext(execCtx, m.Binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docs: merge tool %q failed: %w\n%s", m.Binary, err, string(out))
	}
	return outPath, nil
}

// ExternalConverter shells out to a configurable external conversion tool
// (e.g. libreoffice --convert-to, pandoc).
type ExternalConverter struct {
	Binary  string // default "pandoc"
	Timeout time.Duration
}

func NewExternalConverter(binary string) *ExternalConverter {
	if binary == "" {
		binary = "pandoc"
	}
	return &ExternalConverter{Binary: binary, Timeout: time.Minute}
}

func (c *ExternalConverter) Convert(ctx context.Context, inputPath, outputFormat, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("docs: create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, uuid.New().String()+"."+outputFormat)

	timeout := c.Timeout
	if timeout == 0 {
		timeout = time.Minute
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, c.Binary, inputPath, "-o", outPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docs: convert tool %q failed: %w\n%s", c.Binary, err, string(out))
	}
	return outPath, nil
}

// PageCount opens path as a PDF and returns its page count, used by
// docs:merge to report accounting alongside the merged output.
func PageCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("docs: read %s: %w", path, err)
	}
	return pageCountFromReader(bytes.NewReader(data), int64(len(data)))
}

func pageCountFromReader(r io.ReaderAt, size int64) (int, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("docs: parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}
