package docs

import (
	"context"
	"fmt"
	"strings"

	"github.com/soochol/agentcli/internal/workflow"
)

func parseCommaList(raw string) (any, error) {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("expected a comma-separated list of file paths")
	}
	return out, nil
}

// Register installs the docs:* workflows into reg.
func Register(reg *workflow.Registry, merger Merger, converter Converter, outDir string) error {
	return register(reg, merger, converter, outDir, PageCount)
}

func register(reg *workflow.Registry, merger Merger, converter Converter, outDir string, counter pageCounter) error {
	specs := []*workflow.Spec{mergeSpecWithCounter(merger, outDir, counter), convertSpec(converter, outDir)}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// pageCounter abstracts PageCount so tests can exercise docs:merge's
// aggregation logic without needing a real parseable PDF on disk.
type pageCounter func(path string) (int, error)

func mergeSpecWithCounter(merger Merger, outDir string, counter pageCounter) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "docs",
		Name:      "merge",
		Summary:   "merge PDF files into one",
		Category:  "docs",
		Params: []workflow.ParamSpec{
			{Name: "inputs", Type: workflow.TypeString, Required: true, Parser: parseCommaList},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			inputs, _ := args["inputs"].([]string)

			totalPages := 0
			for _, path := range inputs {
				n, err := counter(path)
				if err != nil {
					return "", err
				}
				totalPages += n
			}

			outPath, err := merger.Merge(ctx, inputs, outDir)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("merged %d files (%d pages) -> %s", len(inputs), totalPages, outPath), nil
		},
	}
}

func convertSpec(converter Converter, outDir string) *workflow.Spec {
	return &workflow.Spec{
		Namespace: "docs",
		Name:      "convert",
		Summary:   "convert a document to another format",
		Category:  "docs",
		Params: []workflow.ParamSpec{
			{Name: "input", Type: workflow.TypeString, Required: true},
			{Name: "format", Type: workflow.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, wctx *workflow.Context, args map[string]any) (string, error) {
			input, _ := args["input"].(string)
			format, _ := args["format"].(string)
			outPath, err := converter.Convert(ctx, input, format, outDir)
			if err != nil {
				return "", err
			}
			return outPath, nil
		},
	}
}
