package vectorstore

import (
	"sort"

	"productrag/internal/domain"
)

// catalogCache mirrors indexed items for exact-id lookups and category
// enumeration. It is owned by Store and guarded by Store.mu.
type catalogCache struct {
	items map[string]domain.Item
}

func newCatalogCache() *catalogCache {
	return &catalogCache{items: make(map[string]domain.Item)}
}

func (c *catalogCache) put(it domain.Item) {
	c.items[it.ID] = it.Clone()
}

func (c *catalogCache) get(id string) (domain.Item, bool) {
	it, ok := c.items[id]
	if !ok {
		return domain.Item{}, false
	}
	return it.Clone(), true
}

// categories scans the cache; cheap at catalog scale.
func (c *catalogCache) categories() []string {
	seen := make(map[string]struct{})
	for _, it := range c.items {
		seen[it.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}
