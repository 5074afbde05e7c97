package completion

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// RegisteredProvider is a provider together with the metadata the registry
// stamped on it at registration time.
type RegisteredProvider struct {
	Provider
	ID                string
	Namespace         string
	TriggerCharacters []string
}

// IsBuiltin reports whether the wrapped provider declares itself builtin.
func (p *RegisteredProvider) IsBuiltin() bool {
	b, ok := p.Provider.(BuiltinProvider)
	return ok && b.IsBuiltin()
}

// ShellTypes returns the wrapped provider's shell restriction, or nil when it
// serves every shell.
func (p *RegisteredProvider) ShellTypes() []ShellType {
	if r, ok := p.Provider.(ShellTypeRestricted); ok {
		return r.ShellTypes()
	}
	return nil
}

// servesShell reports whether the provider may run for the given shell.
func (p *RegisteredProvider) servesShell(shell ShellType) bool {
	types := p.ShellTypes()
	return len(types) == 0 || slices.Contains(types, shell)
}

// Disposable releases something acquired earlier.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable.
type DisposeFunc func()

func (f DisposeFunc) Dispose() { f() }

// Registry tracks providers by owning namespace and id. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]map[string]*RegisteredProvider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]map[string]*RegisteredProvider),
	}
}

// Register stores provider under namespace and id. A later registration with
// the same namespace and id replaces the earlier one. The returned Disposable
// removes the entry, and the namespace bucket once it is empty.
func (r *Registry) Register(namespace, id string, provider Provider, triggerCharacters ...string) Disposable {
	entry := &RegisteredProvider{
		Provider:          provider,
		ID:                id,
		Namespace:         namespace,
		TriggerCharacters: slices.Clone(triggerCharacters),
	}

	r.mu.Lock()
	bucket, ok := r.providers[namespace]
	if !ok {
		bucket = make(map[string]*RegisteredProvider)
		r.providers[namespace] = bucket
	}
	bucket[id] = entry
	r.mu.Unlock()

	var once sync.Once
	return DisposeFunc(func() {
		once.Do(func() { r.remove(entry) })
	})
}

func (r *Registry) remove(entry *RegisteredProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.providers[entry.Namespace]
	if !ok {
		return
	}
	// A replacement registered under the same id stays.
	if bucket[entry.ID] != entry {
		return
	}
	delete(bucket, entry.ID)
	if len(bucket) == 0 {
		delete(r.providers, entry.Namespace)
	}
}

// get returns the provider registered under namespace and id.
func (r *Registry) get(namespace, id string) (*RegisteredProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[namespace][id]
	return p, ok
}

// Providers returns a point-in-time snapshot of every registered provider
// across all namespaces, ordered by namespace then id.
func (r *Registry) Providers() []*RegisteredProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	namespaces := lo.Keys(r.providers)
	slices.Sort(namespaces)

	var all []*RegisteredProvider
	for _, ns := range namespaces {
		bucket := r.providers[ns]
		ids := lo.Keys(bucket)
		slices.Sort(ids)
		for _, id := range ids {
			all = append(all, bucket[id])
		}
	}
	return all
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.SumBy(lo.Values(r.providers), func(b map[string]*RegisteredProvider) int { return len(b) })
}
