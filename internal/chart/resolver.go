package chart

import (
	"errors"
	"fmt"
	"sort"
)

// HistoryChecker reports whether an id already has chart history of its own.
type HistoryChecker interface {
	HasHistory(id string) bool
}

// Resolver maps every known external id to the canonical id of the entity it
// belongs to. Canonical ids map to themselves. It only governs attribution
// from now on; it never rewrites recorded history.
type Resolver struct {
	canonical map[string]string
	history   HistoryChecker
}

// NewResolver returns an empty resolver. history may be nil, in which case no
// id is considered to have history.
func NewResolver(history HistoryChecker) *Resolver {
	return &Resolver{
		canonical: make(map[string]string),
		history:   history,
	}
}

// Register records id as canonical unless it is already known.
func (r *Resolver) Register(id string) {
	if _, ok := r.canonical[id]; !ok {
		r.canonical[id] = id
	}
}

// Resolve returns the canonical id for id. ok is false for ids the resolver
// has never seen, which callers treat as new, unregistered entities.
func (r *Resolver) Resolve(id string) (canonical string, ok bool) {
	canonical, ok = r.canonical[id]
	return canonical, ok
}

// ResolveOrSelf resolves id, passing unknown ids through unchanged.
func (r *Resolver) ResolveOrSelf(id string) string {
	if c, ok := r.canonical[id]; ok {
		return c
	}
	return id
}

// IsAlias reports whether id is known and points at a different id.
func (r *Resolver) IsAlias(id string) bool {
	c, ok := r.canonical[id]
	return ok && c != id
}

// RegisterAlias makes alias resolve to canonical. canonical is resolved
// first, so chains collapse onto a single root.
//
// It fails with a *ConflictError if alias is already an alias of another
// entity, or if alias is itself a canonical id with chart history. A
// canonical id without history is absorbed along with its own aliases.
func (r *Resolver) RegisterAlias(alias, canonical string) error {
	if alias == "" || canonical == "" {
		return errors.New("alias and canonical ids must not be empty")
	}

	target := r.ResolveOrSelf(canonical)
	r.Register(target)
	if alias == target {
		return nil
	}

	current, known := r.canonical[alias]
	if !known {
		r.canonical[alias] = target
		return nil
	}
	if current == target {
		return nil
	}
	if current != alias {
		return &ConflictError{
			Alias:     alias,
			Canonical: target,
			Reason:    fmt.Sprintf("already an alias of %q", current),
		}
	}
	if r.history != nil && r.history.HasHistory(alias) {
		return &ConflictError{
			Alias:     alias,
			Canonical: target,
			Reason:    "it has chart history of its own",
		}
	}

	for id, c := range r.canonical {
		if c == alias {
			r.canonical[id] = target
		}
	}
	return nil
}

// Aliases returns the ids other than canonical that resolve to it, sorted.
func (r *Resolver) Aliases(canonical string) []string {
	var aliases []string
	for id, c := range r.canonical {
		if c == canonical && id != canonical {
			aliases = append(aliases, id)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// IDs returns canonical followed by its aliases.
func (r *Resolver) IDs(canonical string) []string {
	return append([]string{canonical}, r.Aliases(canonical)...)
}

// Pairs returns every alias with the canonical id it resolves to.
func (r *Resolver) Pairs() map[string]string {
	pairs := make(map[string]string)
	for id, c := range r.canonical {
		if id != c {
			pairs[id] = c
		}
	}
	return pairs
}
