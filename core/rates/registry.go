package rates

import "sync"

// Registry holds the process-wide rate table. Readers always see one complete
// table; Replace swaps the whole table or nothing.
type Registry struct {
	mu    sync.RWMutex
	table *Table
}

// NewRegistry creates a registry around an initial table (Default() if nil)
func NewRegistry(initial *Table) *Registry {
	if initial == nil {
		initial = Default()
	}
	return &Registry{table: initial}
}

// Current returns the active table. Callers must not modify it.
func (r *Registry) Current() *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// Replace validates next and makes it the active table
func (r *Registry) Replace(next *Table) error {
	if err := next.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.table = next
	r.mu.Unlock()
	return nil
}

// Reload loads a rate file and replaces the active table with it
func (r *Registry) Reload(path string) error {
	next, err := LoadFile(path)
	if err != nil {
		return err
	}
	return r.Replace(next)
}
