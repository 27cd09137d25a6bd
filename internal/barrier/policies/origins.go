// Package policies holds helpers shared by the concrete barrier policies.
package policies

import (
	"sort"
	"strings"

	"msgbarrier/pkg/domain"
)

// OriginMatcher decides whether an origin belongs to a set.
type OriginMatcher interface {
	Contains(origin domain.Location) bool
}

// Origins is a fixed set of origins.
type Origins map[domain.Location]struct{}

// NewOrigins builds a set from locations.
func NewOrigins(locations ...domain.Location) Origins {
	set := make(Origins, len(locations))
	for _, l := range locations {
		set[l] = struct{}{}
	}
	return set
}

func (o Origins) Contains(origin domain.Location) bool {
	_, ok := o[origin]
	return ok
}

func (o Origins) String() string {
	names := make([]string, 0, len(o))
	for l := range o {
		names = append(names, l.String())
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ",") + "}"
}

// MatcherFunc adapts a predicate to OriginMatcher.
type MatcherFunc func(origin domain.Location) bool

func (f MatcherFunc) Contains(origin domain.Location) bool { return f(origin) }

// Everything matches every origin.
var Everything OriginMatcher = MatcherFunc(func(domain.Location) bool { return true })

// Interior matches origins at the given parent depth whose interior starts
// with prefix, e.g. all parachains under the relay chain.
func Interior(parents uint8, prefix string) OriginMatcher {
	return MatcherFunc(func(origin domain.Location) bool {
		return origin.Parents == parents && strings.HasPrefix(origin.Interior, prefix)
	})
}
