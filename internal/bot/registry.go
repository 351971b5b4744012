package bot

import (
	"errors"
	"fmt"
	"sync"
)

// Registry holds registered modules.
type Registry struct {
	mu       sync.RWMutex
	modules  []Module
	names    map[string]struct{}
	commands map[string]string // Slash command name to owning module
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules:  make([]Module, 0),
		names:    make(map[string]struct{}),
		commands: make(map[string]string),
	}
}

// Register adds a module to the registry. Module names and the slash commands
// they provide must be unique; the bot routes commands by name alone.
func (r *Registry) Register(m Module) error {
	if m == nil {
		return errors.New("module is nil")
	}
	name := m.Name()
	if name == "" {
		return errors.New("module has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok {
		return fmt.Errorf("module %q is already registered", name)
	}
	commands := m.Commands()
	for _, cmd := range commands {
		if owner, ok := r.commands[cmd.Name]; ok {
			return fmt.Errorf("command %q of module %q is already provided by module %q", cmd.Name, name, owner)
		}
	}

	for _, cmd := range commands {
		r.commands[cmd.Name] = name
	}
	r.names[name] = struct{}{}
	r.modules = append(r.modules, m)
	return nil
}

// Modules returns a snapshot of all registered modules.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Module, len(r.modules))
	copy(result, r.modules)
	return result
}

// Global registry instance for module self-registration via init()
var globalRegistry = NewRegistry()

// Register adds a module to the global registry. It is called from module
// init() functions and panics if the module cannot be registered.
func Register(m Module) {
	if err := globalRegistry.Register(m); err != nil {
		panic("bot: " + err.Error())
	}
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry resets the global registry.
// This is intended for testing purposes only.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
