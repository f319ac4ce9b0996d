package docs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soochol/agentcli/internal/workflow"
)

func TestPageCount_RejectsUnparseableContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-pdf.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := PageCount(path)
	require.Error(t, err)
}

func TestPageCount_MissingFile(t *testing.T) {
	_, err := PageCount(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}

type fakeMerger struct {
	calledWith []string
	outPath    string
}

func (m *fakeMerger) Merge(ctx context.Context, inputs []string, outDir string) (string, error) {
	m.calledWith = inputs
	return filepath.Join(outDir, "merged.pdf"), nil
}

type fakeConverter struct{}

func (fakeConverter) Convert(ctx context.Context, inputPath, outputFormat, outDir string) (string, error) {
	return filepath.Join(outDir, "converted."+outputFormat), nil
}

func fakeCounter(pages map[string]int) pageCounter {
	return func(path string) (int, error) {
		return pages[path], nil
	}
}

func TestDocsMerge_SumsPageCountsAndDelegatesToMerger(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")

	reg := workflow.NewRegistry()
	merger := &fakeMerger{}
	counter := fakeCounter(map[string]int{a: 3, b: 5})
	require.NoError(t, register(reg, merger, fakeConverter{}, dir, counter))

	res, err := reg.Execute(context.Background(), `docs:merge inputs:"`+a+","+b+`"`, nil)
	require.NoError(t, err)
	require.Contains(t, res.Output, "merged 2 files (8 pages)")
	require.Equal(t, []string{a, b}, merger.calledWith)
}

func TestDocsConvert(t *testing.T) {
	dir := t.TempDir()
	reg := workflow.NewRegistry()
	require.NoError(t, Register(reg, &fakeMerger{}, fakeConverter{}, dir))

	res, err := reg.Execute(context.Background(), "docs:convert input:/tmp/in.docx format:pdf", nil)
	require.NoError(t, err)
	require.Contains(t, res.Output, "converted.pdf")
}
