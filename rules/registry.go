package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRule is matched by UnknownRuleError.
var ErrUnknownRule = errors.New("rules: unknown rule")

// UnknownRuleError reports a configured rule ID with no implementation.
type UnknownRuleError struct {
	ID string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("rules: unknown rule %q (known: %s)", e.ID, strings.Join(Known(), ", "))
}

func (e *UnknownRuleError) Is(target error) bool { return target == ErrUnknownRule }

// All returns a fresh instance of every known rule in category order:
// structure, layout, typography, metadata, media, links.
func All() []Rule {
	return []Rule{
		HeadingHierarchy{},
		MarginConsistency{},
		FontConsistency{},
		MetadataCompleteness{},
		ImageResolution{},
		HyperlinkValidity{},
	}
}

// Known returns the IDs of every known rule in registration order.
func Known() []string {
	all := All()
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID()
	}
	return ids
}

// Registry is the ordered set of rules enabled for one run. It is built
// per run and never modified afterwards.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry selects rules by ID. An empty enabled list selects every
// known rule; disabled IDs are then removed. Duplicates are ignored and
// the result keeps the canonical category order regardless of the order
// IDs were given in. Any ID without an implementation fails with an
// UnknownRuleError.
func NewRegistry(enabled, disabled []string) (*Registry, error) {
	all := All()
	byID := make(map[string]Rule, len(all))
	for _, r := range all {
		byID[r.ID()] = r
	}

	selected := make(map[string]bool, len(all))
	if len(enabled) == 0 {
		for id := range byID {
			selected[id] = true
		}
	}
	for _, id := range enabled {
		id = strings.TrimSpace(id)
		if _, ok := byID[id]; !ok {
			return nil, &UnknownRuleError{ID: id}
		}
		selected[id] = true
	}
	for _, id := range disabled {
		id = strings.TrimSpace(id)
		if _, ok := byID[id]; !ok {
			return nil, &UnknownRuleError{ID: id}
		}
		delete(selected, id)
	}

	reg := &Registry{index: make(map[string]int, len(selected))}
	for _, r := range all {
		if selected[r.ID()] {
			reg.index[r.ID()] = len(reg.rules)
			reg.rules = append(reg.rules, r)
		}
	}
	return reg, nil
}

// Rules returns the enabled rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of enabled rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Index returns the registration position of a rule ID.
func (r *Registry) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// IDs returns the enabled rule IDs in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.rules))
	for i, rule := range r.rules {
		ids[i] = rule.ID()
	}
	return ids
}
