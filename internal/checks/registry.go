package checks

import "sync"

// Entry is a named check as stored in a Registry.
type Entry struct {
	Name  string
	Check Check
}

// Registry is an ordered name to check mapping populated at startup.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]Check
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Check),
	}
}

// Register adds check under name. Registering an existing name replaces the
// check and keeps its position.
func (r *Registry) Register(name string, check Check) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = check
}

func (r *Registry) Get(name string) (Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	check, ok := r.entries[name]
	return check, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Entries returns a snapshot of the registry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.order))
	for i, name := range r.order {
		entries[i] = Entry{Name: name, Check: r.entries[name]}
	}
	return entries
}
