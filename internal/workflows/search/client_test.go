package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const resultsPageFixture = `<html><body>
<nav><a href="https://example.com/about">About</a></nav>
<div class="results">
	<a href="https://go.dev/blog/concurrency">Go concurrency patterns</a>
	<a href="/relative/link">Not a search result</a>
	<a href="https://go.dev/blog/generics">Go generics guide</a>
</div>
</body></html>`

func TestExtractResultLinks_CollectsAbsoluteLinksWithText(t *testing.T) {
	results, err := extractResultLinks(strings.NewReader(resultsPageFixture))
	require.NoError(t, err)

	require.Len(t, results, 3)
	require.Equal(t, "https://go.dev/blog/concurrency", results[1].URL)
	require.Equal(t, "Go concurrency patterns", results[1].Title)
}

func TestExtractResultLinks_SkipsRelativeLinksAndEmptyText(t *testing.T) {
	page := `<html><body><a href="/relative">x</a><a href="https://example.com"></a></body></html>`
	results, err := extractResultLinks(strings.NewReader(page))
	require.NoError(t, err)
	require.Empty(t, results)
}
