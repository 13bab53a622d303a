package pipeline

import "assetproxy/internal/domain"

// Policy is the set of asset types the service will deliver. The zero value
// allows everything.
type Policy struct {
	allowed map[domain.AssetType]struct{}
}

// NewPolicy builds a policy from a list of types; aliases collapse onto their
// canonical tag so "audio" admits sounds and "place" admits models.
func NewPolicy(types []domain.AssetType) Policy {
	if len(types) == 0 {
		return Policy{}
	}
	allowed := make(map[domain.AssetType]struct{}, len(types))
	for _, t := range types {
		allowed[t.Canonical()] = struct{}{}
	}
	return Policy{allowed: allowed}
}

// Restricted reports whether the policy filters anything.
func (p Policy) Restricted() bool { return len(p.allowed) > 0 }

// Allows reports whether t may be delivered.
func (p Policy) Allows(t domain.AssetType) bool {
	if !p.Restricted() {
		return true
	}
	_, ok := p.allowed[t.Canonical()]
	return ok
}
