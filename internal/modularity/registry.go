// Package modularity implements the dependency-resolving module loader.
// Since Go has no dynamic module execution, a "module" here is any
// statically compiled type implementing Module, registered at init() time
// the way backend implementations register themselves with a central
// registry: discovery happens once at process startup rather than by
// scanning a virtual file system for source files.
package modularity

import "sync"

// Priority controls ordering among multiple modules that provide the same
// capability; higher priorities are preferred.
type Priority int

const (
	// PriorityMin is the lowest priority a module may declare.
	PriorityMin Priority = -100
	// PriorityMax is the highest priority a module may declare.
	PriorityMax Priority = 100
	// PriorityNeutral is the default priority for modules that don't care.
	PriorityNeutral Priority = 0
)

// Module is a statically compiled engine module: the Go analogue of a
// dynamically imported rave engine module object. It declares what
// capabilities it provides and requires, and is initialized and torn down
// through Load/Unload once the resolver has satisfied its dependencies.
type Module interface {
	// Name uniquely identifies this module, the equivalent of a Python
	// module's __name__.
	Name() string
	// Priority ranks this module among other providers of the same
	// capability; see PriorityMin/PriorityMax/PriorityNeutral.
	Priority() Priority
	// Provides lists the capability tags this module offers to others.
	Provides() []string
	// Requires lists the capability tags this module needs satisfied
	// before it can be loaded.
	Requires() []string
	// Load initializes the module. provisions maps each capability named
	// in Requires to the concrete Module chosen to satisfy it.
	Load(provisions map[string]Module) error
	// Unload tears the module down. Called in reverse dependency order.
	Unload()
}

// Base supplies neutral defaults for every Module method except Name; embed
// it and override only what a concrete module actually needs.
type Base struct{}

func (Base) Priority() Priority           { return PriorityNeutral }
func (Base) Provides() []string           { return nil }
func (Base) Requires() []string           { return nil }
func (Base) Load(map[string]Module) error { return nil }
func (Base) Unload()                      {}

type candidate struct {
	seq    int
	module Module
}

var (
	mu         sync.Mutex
	sequence   int
	order      []Module
	byName     = map[string]Module{}
	provisions = map[string][]candidate{}
	loaded     = map[string]bool{}
)

// Register adds m to the process-wide module table and indexes its
// provisions by capability. Call it from the defining package's init().
func Register(m Module) {
	mu.Lock()
	defer mu.Unlock()

	byName[m.Name()] = m
	order = append(order, m)

	seq := sequence
	sequence++
	for _, provision := range m.Provides() {
		provisions[provision] = append(provisions[provision], candidate{seq: seq, module: m})
	}
}

// Reset clears every registered module, provision index and loaded-state
// entry. Exposed for tests; production code never calls this.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	sequence = 0
	order = nil
	byName = map[string]Module{}
	provisions = map[string][]candidate{}
	loaded = map[string]bool{}
}

func isLoaded(m Module) bool {
	mu.Lock()
	defer mu.Unlock()
	return loaded[m.Name()]
}

func markLoaded(m Module) {
	mu.Lock()
	defer mu.Unlock()
	loaded[m.Name()] = true
}

func unmarkLoaded(m Module) {
	mu.Lock()
	defer mu.Unlock()
	delete(loaded, m.Name())
}

// Lookup returns the registered module named name, if any. Used by
// internal/importer to turn a resolved descriptor's factory name into the
// concrete Module that implements it.
func Lookup(name string) (Module, bool) {
	mu.Lock()
	defer mu.Unlock()
	m, ok := byName[name]
	return m, ok
}
