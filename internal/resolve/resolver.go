// Package resolve maps free-text institution names to stable FDIC CERT
// identifiers. Resolution is a deterministic fallback chain: the static
// table first, then registry searches over generated name variants. A miss
// is a normal outcome, not a fault.
package resolve

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// ErrNotFound is returned when every strategy is exhausted with no active
// match. Callers must treat this as a normal outcome.
var ErrNotFound = eris.New("resolve: no active institution matched")

// Registry is the institution search surface of the FDIC client.
type Registry interface {
	SearchInstitutions(ctx context.Context, term string) ([]model.Institution, error)
}

// strategy attempts one resolution approach. ok=false means "continue with
// the next strategy"; an error aborts only when no later strategy can
// succeed.
type strategy func(ctx context.Context, name string) (model.Institution, bool, error)

// Resolver resolves bank names against the static table and the FDIC
// registry.
type Resolver struct {
	strategies []strategy
}

// New creates a Resolver backed by the given registry.
func New(registry Registry) *Resolver {
	r := &Resolver{}
	r.strategies = []strategy{
		r.staticStrategy,
		searchStrategy(registry),
	}
	return r
}

// Resolve maps a free-text name to an Institution. Returns ErrNotFound when
// no strategy produces an active match.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.Institution, error) {
	for _, s := range r.strategies {
		inst, ok, err := s(ctx, name)
		if err != nil {
			return model.Institution{}, err
		}
		if ok {
			return inst, nil
		}
	}
	return model.Institution{}, eris.Wrapf(ErrNotFound, "resolve %q", name)
}

// staticStrategy checks the built-in table. A hit short-circuits the search
// path entirely.
func (r *Resolver) staticStrategy(_ context.Context, name string) (model.Institution, bool, error) {
	inst, ok := lookupStatic(name)
	return inst, ok, nil
}

// searchStrategy queries the registry with each search-term variant in order
// and stops at the first active match. Failed upstream calls and
// inactive-only result sets both fall through to the next variant.
func searchStrategy(registry Registry) strategy {
	return func(ctx context.Context, name string) (model.Institution, bool, error) {
		for _, term := range SearchTerms(name) {
			candidates, err := registry.SearchInstitutions(ctx, term)
			if err != nil {
				zap.L().Warn("resolve: registry search failed, trying next variant",
					zap.String("term", term),
					zap.Error(err),
				)
				continue
			}
			if len(candidates) == 0 {
				continue
			}

			if inst, ok := selectLargestActive(candidates); ok {
				return inst, true, nil
			}
			// Only inactive institutions matched this variant; a later
			// variant can still hit an active one.
		}
		return model.Institution{}, false, nil
	}
}

// selectLargestActive filters to active institutions and picks the one with
// the largest asset size. Ties keep the first candidate encountered.
func selectLargestActive(candidates []model.Institution) (model.Institution, bool) {
	var best model.Institution
	found := false
	for _, c := range candidates {
		if !c.Active {
			continue
		}
		if !found || c.Asset > best.Asset {
			best = c
			found = true
		}
	}
	return best, found
}
