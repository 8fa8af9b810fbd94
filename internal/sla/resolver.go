package sla

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// PolicyFinder is the slice of policy storage the resolver needs.
type PolicyFinder interface {
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error)
	FindDefault(ctx context.Context) (*domain.SLAPolicy, error)
	FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error)
}

// ResolverStrategy attempts one rule of the policy lookup chain. A (nil,
// false, nil) return means "no match here, try the next strategy"; errors are
// treated the same way so a storage hiccup on one rung cannot block
// resolution.
type ResolverStrategy interface {
	Name() string
	TryResolve(ctx context.Context, ticket *domain.Ticket) (*domain.SLAPolicy, bool, error)
}

// PolicyResolver walks an ordered strategy chain: explicit policy, category
// scope, default flag, any active policy, built-in fallback. It never fails.
type PolicyResolver struct {
	strategies []ResolverStrategy
	logger     *zap.Logger
}

// NewPolicyResolver builds the standard chain over the given store.
func NewPolicyResolver(policies PolicyFinder, logger *zap.Logger) *PolicyResolver {
	return &PolicyResolver{
		strategies: []ResolverStrategy{
			explicitPolicyStrategy{policies: policies},
			categoryPolicyStrategy{policies: policies},
			defaultPolicyStrategy{policies: policies},
			anyActivePolicyStrategy{policies: policies},
		},
		logger: logger,
	}
}

// Resolve returns the effective policy for the ticket. The built-in fallback
// guarantees a usable policy even with an empty store, so ticket creation and
// monitoring are never blocked by missing configuration.
func (r *PolicyResolver) Resolve(ctx context.Context, ticket *domain.Ticket) *domain.SLAPolicy {
	for _, strategy := range r.strategies {
		policy, ok, err := strategy.TryResolve(ctx, ticket)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("policy resolver strategy failed",
					zap.String("strategy", strategy.Name()),
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
			}
			continue
		}
		if ok {
			return policy
		}
	}
	return domain.FallbackPolicy()
}

type explicitPolicyStrategy struct {
	policies PolicyFinder
}

func (s explicitPolicyStrategy) Name() string { return "explicit" }

func (s explicitPolicyStrategy) TryResolve(ctx context.Context, ticket *domain.Ticket) (*domain.SLAPolicy, bool, error) {
	if ticket.SLAPolicyID == nil || *ticket.SLAPolicyID == "" {
		return nil, false, nil
	}
	policy, err := s.policies.GetByID(ctx, *ticket.SLAPolicyID)
	if err != nil {
		return nil, false, err
	}
	if policy == nil {
		return nil, false, nil
	}
	return policy, true, nil
}

type categoryPolicyStrategy struct {
	policies PolicyFinder
}

func (s categoryPolicyStrategy) Name() string { return "category" }

func (s categoryPolicyStrategy) TryResolve(ctx context.Context, ticket *domain.Ticket) (*domain.SLAPolicy, bool, error) {
	if ticket.Category == "" {
		return nil, false, nil
	}
	policy, err := s.policies.FindActiveByCategory(ctx, ticket.Category)
	if err != nil {
		return nil, false, err
	}
	if policy == nil {
		return nil, false, nil
	}
	return policy, true, nil
}

type defaultPolicyStrategy struct {
	policies PolicyFinder
}

func (s defaultPolicyStrategy) Name() string { return "default" }

func (s defaultPolicyStrategy) TryResolve(ctx context.Context, ticket *domain.Ticket) (*domain.SLAPolicy, bool, error) {
	policy, err := s.policies.FindDefault(ctx)
	if err != nil {
		return nil, false, err
	}
	if policy == nil {
		return nil, false, nil
	}
	return policy, true, nil
}

type anyActivePolicyStrategy struct {
	policies PolicyFinder
}

func (s anyActivePolicyStrategy) Name() string { return "any_active" }

func (s anyActivePolicyStrategy) TryResolve(ctx context.Context, ticket *domain.Ticket) (*domain.SLAPolicy, bool, error) {
	policy, err := s.policies.FindAnyActive(ctx)
	if err != nil {
		return nil, false, err
	}
	if policy == nil {
		return nil, false, nil
	}
	return policy, true, nil
}
