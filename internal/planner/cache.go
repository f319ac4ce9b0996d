package planner

import (
	"sort"
	"strings"
	"sync"

	"github.com/soochol/agentcli/internal/workflow"
)

// commandCache memoises the rendered command reference text per active
// category set, keyed on the registry's generation number so a successful
// dynamic registration (which bumps the generation) invalidates every entry
// in one stroke (§4.F, "per-category cache ... invalidated on successful
// dynamic registration").
type commandCache struct {
	mu         sync.Mutex
	generation int
	entries    map[string]string
}

func newCommandCache() *commandCache {
	return &commandCache{entries: make(map[string]string)}
}

func categoryCacheKey(categories []string) string {
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// render returns the command reference text for categories, rebuilding and
// caching it if the registry's generation has advanced since the last call.
func (c *commandCache) render(reg *workflow.Registry, categories []string) string {
	gen := reg.Generation()
	key := categoryCacheKey(categories)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.entries = make(map[string]string)
		c.generation = gen
	}
	if text, ok := c.entries[key]; ok {
		return text
	}

	var infos []workflow.CommandInfo
	for _, info := range reg.ExportCommandInfo() {
		if categoryActive(info.Category, categories) {
			infos = append(infos, info)
		}
	}
	text := workflow.BuildCommandReference(infos, nil)
	c.entries[key] = text
	return text
}

func categoryActive(category string, active []string) bool {
	if len(active) == 0 {
		return true
	}
	for _, a := range active {
		if a == category {
			return true
		}
	}
	return false
}
