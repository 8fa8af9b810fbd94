package sla

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

type stubPolicyFinder struct {
	byID       map[string]*domain.SLAPolicy
	byCategory map[string]*domain.SLAPolicy
	defaultPol *domain.SLAPolicy
	anyActive  *domain.SLAPolicy
	failByID   bool
}

func (s *stubPolicyFinder) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	if s.failByID {
		return nil, errors.New("store unavailable")
	}
	return s.byID[id], nil
}

func (s *stubPolicyFinder) FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error) {
	return s.byCategory[category], nil
}

func (s *stubPolicyFinder) FindDefault(ctx context.Context) (*domain.SLAPolicy, error) {
	return s.defaultPol, nil
}

func (s *stubPolicyFinder) FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error) {
	return s.anyActive, nil
}

func TestResolveExplicitPolicyWinsFirst(t *testing.T) {
	explicit := &domain.SLAPolicy{ID: "pol-1", Name: "gold"}
	policyID := "pol-1"
	finder := &stubPolicyFinder{
		byID:       map[string]*domain.SLAPolicy{"pol-1": explicit},
		byCategory: map[string]*domain.SLAPolicy{"billing": {Name: "billing"}},
		defaultPol: &domain.SLAPolicy{Name: "default"},
	}
	resolver := NewPolicyResolver(finder, nil)

	ticket := &domain.Ticket{SLAPolicyID: &policyID, Category: "billing"}
	assert.Equal(t, "gold", resolver.Resolve(context.Background(), ticket).Name)
}

func TestResolveCategoryThenDefaultThenAnyActive(t *testing.T) {
	finder := &stubPolicyFinder{
		byCategory: map[string]*domain.SLAPolicy{"billing": {Name: "billing"}},
		defaultPol: &domain.SLAPolicy{Name: "default"},
		anyActive:  &domain.SLAPolicy{Name: "whatever"},
	}
	resolver := NewPolicyResolver(finder, nil)

	assert.Equal(t, "billing", resolver.Resolve(context.Background(), &domain.Ticket{Category: "billing"}).Name)
	assert.Equal(t, "default", resolver.Resolve(context.Background(), &domain.Ticket{Category: "unknown"}).Name)

	finder.defaultPol = nil
	assert.Equal(t, "whatever", resolver.Resolve(context.Background(), &domain.Ticket{}).Name)
}

func TestResolveFallsBackToBuiltin(t *testing.T) {
	resolver := NewPolicyResolver(&stubPolicyFinder{}, nil)

	policy := resolver.Resolve(context.Background(), &domain.Ticket{})
	require.NotNil(t, policy)
	rule := RulesForPriority(policy, domain.TicketPriorityMedium)
	assert.Equal(t, 24.0, rule.ResponseTimeHours)
	assert.Equal(t, 72.0, rule.ResolutionTimeHours)
}

func TestResolveStrategyErrorFallsThrough(t *testing.T) {
	policyID := "pol-1"
	finder := &stubPolicyFinder{
		failByID:   true,
		defaultPol: &domain.SLAPolicy{Name: "default"},
	}
	resolver := NewPolicyResolver(finder, nil)

	ticket := &domain.Ticket{SLAPolicyID: &policyID}
	assert.Equal(t, "default", resolver.Resolve(context.Background(), ticket).Name)
}

func TestResolveIsReferentiallyStable(t *testing.T) {
	finder := &stubPolicyFinder{defaultPol: &domain.SLAPolicy{Name: "default"}}
	resolver := NewPolicyResolver(finder, nil)
	ticket := &domain.Ticket{}

	first := resolver.Resolve(context.Background(), ticket)
	second := resolver.Resolve(context.Background(), ticket)
	assert.Equal(t, first.Name, second.Name)
}
