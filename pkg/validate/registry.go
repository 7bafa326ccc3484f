package validate

import (
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/forge/pkg/core"
)

// globalRegistry is the single global registry for validation rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered validation rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by ID
}

// RuleDef is a project validation rule definition.
type RuleDef struct {
	ID          string   // Unique identifier, e.g., "DSL01"
	Name        string   // Human-readable name, e.g., "model-definitions"
	Group       string   // Category: "models", "fields", "routes", "relationships"
	Description string   // Human-readable description
	Checks      []string // Individual checks performed, one line each
	Check       Check    // The check function

	// Documentation fields
	Rationale   string
	BadExample  string
	GoodExample string
}

// Check is the function signature for rule checks.
type Check func(ctx *Context) []core.Diagnostic

// Info returns the rule's metadata without its check function.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Group:       r.Group,
		Description: r.Description,
		Checks:      r.Checks,
		Rationale:   r.Rationale,
		BadExample:  r.BadExample,
		GoodExample: r.GoodExample,
	}
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// GetAll returns all registered rules sorted by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	slices.SortFunc(rules, func(a, b RuleDef) int {
		return strings.Compare(a.ID, b.ID)
	})
	return rules
}

// GetByID returns a rule by its ID. The lookup ignores case.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[strings.ToUpper(id)]
	return rule, ok
}

// GetByGroup returns all rules in a specific group, sorted by ID.
func GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

// Clear removes all registered rules. Used for testing.
func Clear() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules = make(map[string]RuleDef)
}
