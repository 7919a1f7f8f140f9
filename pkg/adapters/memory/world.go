package memory

import (
	"sync"

	"github.com/reelvm/reel/pkg/domain"
)

// Variables is a threadsafe in-memory variable table.
type Variables struct {
	mu sync.RWMutex
	m  map[string]domain.Value
}

// NewVariables creates an empty variable table.
func NewVariables() *Variables {
	return &Variables{m: make(map[string]domain.Value)}
}

// Get returns the value for id.
func (v *Variables) Get(id string) (domain.Value, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.m[id]
	return val, ok
}

// Set stores a value under id.
func (v *Variables) Set(id string, val domain.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.m[id] = val
}

// All returns a copy of the whole table.
func (v *Variables) All() map[string]domain.Value {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]domain.Value, len(v.m))
	for k, val := range v.m {
		out[k] = val
	}
	return out
}

// Inventory is a threadsafe in-memory item-count table.
type Inventory struct {
	mu sync.Mutex
	m  map[string]int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{m: make(map[string]int)}
}

// Add grants count units of an item.
func (i *Inventory) Add(itemID string, count int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m[itemID] += count
}

// Remove takes count units of an item, flooring at zero.
func (i *Inventory) Remove(itemID string, count int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m[itemID] -= count
	if i.m[itemID] <= 0 {
		delete(i.m, itemID)
	}
}

// Count reports how many units of an item are held.
func (i *Inventory) Count(itemID string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.m[itemID]
}
