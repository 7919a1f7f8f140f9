package runtime

import "github.com/reelvm/reel/pkg/domain"

// Private fallbacks used when a host wires no variable or inventory system.
// Hosts that need to observe state inject adapters instead.

type memoryVariables struct {
	m map[string]domain.Value
}

func newMemoryVariables() *memoryVariables {
	return &memoryVariables{m: make(map[string]domain.Value)}
}

func (v *memoryVariables) Get(id string) (domain.Value, bool) {
	val, ok := v.m[id]
	return val, ok
}

func (v *memoryVariables) Set(id string, val domain.Value) { v.m[id] = val }

func (v *memoryVariables) All() map[string]domain.Value {
	out := make(map[string]domain.Value, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

type memoryInventory struct {
	m map[string]int
}

func newMemoryInventory() *memoryInventory {
	return &memoryInventory{m: make(map[string]int)}
}

func (i *memoryInventory) Add(itemID string, count int) { i.m[itemID] += count }

func (i *memoryInventory) Remove(itemID string, count int) {
	i.m[itemID] -= count
	if i.m[itemID] <= 0 {
		delete(i.m, itemID)
	}
}

func (i *memoryInventory) Count(itemID string) int { return i.m[itemID] }
