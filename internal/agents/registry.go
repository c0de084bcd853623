package agents

import "sync"

// Registry is the in-memory specialist directory the coordinator fans
// out across. Grounded on the teacher's internal/registry in-memory
// map repository shape (internal/registry/agent_type_repository.go),
// repurposed from agent *types* to agent *instances* since the kernel
// always runs exactly six fixed specialists rather than a dynamic set.
type Registry struct {
	mu          sync.RWMutex
	specialists []Specialist
}

// NewRegistry builds a registry preloaded with the given specialists.
func NewRegistry(specialists ...Specialist) *Registry {
	return &Registry{specialists: specialists}
}

// Register adds a specialist to the registry.
func (r *Registry) Register(s Specialist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specialists = append(r.specialists, s)
}

// All returns a snapshot of the registered specialists. Ordering is
// not meaningful to callers (spec.md §4.4: "Ordering: none").
func (r *Registry) All() []Specialist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Specialist, len(r.specialists))
	copy(out, r.specialists)
	return out
}
