package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

// Registry maps dialect names and aliases to pattern tables.
// Registration happens at construction time; afterwards the registry is read-only
// and safe for concurrent use.
type Registry struct {
	aliases   map[string]*Definition
	canonical map[string]*Definition
}

// RegistryOption configures a Registry
type RegistryOption func(*registryConfig)

type registryConfig struct {
	builtins bool
}

// WithoutBuiltins creates a registry holding only the generic dialect
func WithoutBuiltins() RegistryOption {
	return func(c *registryConfig) {
		c.builtins = false
	}
}

// NewRegistry creates a registry with the shipped dialects.
// The generic dialect is always registered.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{builtins: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Registry{
		aliases:   make(map[string]*Definition),
		canonical: make(map[string]*Definition),
	}

	if cfg.builtins {
		for _, entry := range builtinSpecs() {
			r.mustRegister(MustDefinition(entry.spec), entry.aliases...)
		}
		return r
	}

	r.mustRegister(MustDefinition(genericSpec()), Generic)
	return r
}

// Register adds a dialect under its own name and the given aliases.
// It must not be called once the registry is shared between goroutines.
func (r *Registry) Register(def *Definition, aliases ...string) error {
	if def == nil {
		return fmt.Errorf("nil dialect definition")
	}

	names := append([]string{def.Name()}, aliases...)
	for _, name := range names {
		key := Normalize(name)
		if existing, ok := r.aliases[key]; ok && existing.Name() != def.Name() {
			return fmt.Errorf("alias %q already registered for dialect %s", key, existing.Name())
		}
	}

	for _, name := range names {
		r.aliases[Normalize(name)] = def
	}
	r.canonical[def.Name()] = def
	return nil
}

func (r *Registry) mustRegister(def *Definition, aliases ...string) {
	if err := r.Register(def, aliases...); err != nil {
		panic(err)
	}
}

// Resolve returns the pattern table registered for name.
// An empty name resolves to the generic dialect.
func (r *Registry) Resolve(name string) (*Definition, error) {
	key := Normalize(name)
	if key == "" {
		key = Generic
	}

	def, ok := r.aliases[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			types.ErrUnsupportedDialect, name, strings.Join(r.SupportedNames(), ", "))
	}
	return def, nil
}

// Canonical returns the canonical dialect name behind an alias
func (r *Registry) Canonical(name string) (string, error) {
	def, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	return def.Name(), nil
}

// Generic returns the fallback dialect
func (r *Registry) Generic() *Definition {
	return r.canonical[Generic]
}

// SupportedNames returns every registered alias, sorted
func (r *Registry) SupportedNames() []string {
	names := make([]string, 0, len(r.aliases))
	for name := range r.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dialects returns the canonical dialect definitions sorted by name
func (r *Registry) Dialects() []*Definition {
	defs := make([]*Definition, 0, len(r.canonical))
	for _, def := range r.canonical {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name() < defs[j].Name()
	})
	return defs
}

// AliasesOf returns the sorted aliases registered for a canonical dialect
func (r *Registry) AliasesOf(canonical string) []string {
	var aliases []string
	for alias, def := range r.aliases {
		if def.Name() == canonical {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// Normalize trims and lower-cases a dialect name and maps underscores to hyphens
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
