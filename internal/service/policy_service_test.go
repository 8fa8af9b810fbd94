package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
)

type stubPolicyRepo struct {
	policies       map[string]*domain.SLAPolicy
	clearedExcept  []string
	createdCounter int
}

func newStubPolicyRepo() *stubPolicyRepo {
	return &stubPolicyRepo{policies: map[string]*domain.SLAPolicy{}}
}

func (s *stubPolicyRepo) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	s.createdCounter++
	policy.ID = fmt.Sprintf("pol-%d", s.createdCounter)
	s.policies[policy.ID] = policy
	return nil
}

func (s *stubPolicyRepo) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	if _, ok := s.policies[policy.ID]; !ok {
		return errors.New("not found")
	}
	s.policies[policy.ID] = policy
	return nil
}

func (s *stubPolicyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.policies[id]; !ok {
		return errors.New("not found")
	}
	delete(s.policies, id)
	return nil
}

func (s *stubPolicyRepo) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	policy, ok := s.policies[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return policy, nil
}

func (s *stubPolicyRepo) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	var result []domain.SLAPolicy
	for _, policy := range s.policies {
		result = append(result, *policy)
	}
	return result, nil
}

func (s *stubPolicyRepo) FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error) {
	return nil, nil
}

func (s *stubPolicyRepo) FindDefault(ctx context.Context) (*domain.SLAPolicy, error) {
	for _, policy := range s.policies {
		if policy.IsDefault {
			return policy, nil
		}
	}
	return nil, nil
}

func (s *stubPolicyRepo) FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error) {
	return nil, nil
}

func (s *stubPolicyRepo) ClearDefaultExcept(ctx context.Context, id string) error {
	s.clearedExcept = append(s.clearedExcept, id)
	for policyID, policy := range s.policies {
		if policyID != id {
			policy.IsDefault = false
		}
	}
	return nil
}

func validPolicy() *domain.SLAPolicy {
	return &domain.SLAPolicy{
		Name: "standard",
		PriorityRules: map[domain.TicketPriority]domain.PriorityRule{
			domain.TicketPriorityMedium: {ResponseTimeHours: 24, ResolutionTimeHours: 72, Enabled: true},
		},
		EscalationLevels: []domain.EscalationLevel{
			{Level: 1, Name: "supervisor", PercentageThreshold: 80, Action: domain.EscalationActionNotify},
		},
		Warnings: domain.WarningConfig{
			Enabled: true,
			Levels:  []domain.WarningLevel{{Percentage: 50}},
		},
		IsActive: true,
	}
}

func TestCreatePolicyValidationMatrix(t *testing.T) {
	assignee := "agent-1"
	cases := []struct {
		name   string
		mutate func(*domain.SLAPolicy)
	}{
		{"empty name", func(p *domain.SLAPolicy) { p.Name = "  " }},
		{"negative hours", func(p *domain.SLAPolicy) {
			p.PriorityRules[domain.TicketPriorityMedium] = domain.PriorityRule{ResponseTimeHours: -1, Enabled: true}
		}},
		{"level out of range", func(p *domain.SLAPolicy) { p.EscalationLevels[0].Level = 6 }},
		{"threshold above 100", func(p *domain.SLAPolicy) { p.EscalationLevels[0].PercentageThreshold = 120 }},
		{"threshold below 0", func(p *domain.SLAPolicy) { p.EscalationLevels[0].PercentageThreshold = -5 }},
		{"unknown action", func(p *domain.SLAPolicy) { p.EscalationLevels[0].Action = "PAGE" }},
		{"assign without target", func(p *domain.SLAPolicy) {
			p.EscalationLevels[0].Action = domain.EscalationActionAssign
		}},
		{"warning percentage out of range", func(p *domain.SLAPolicy) { p.Warnings.Levels[0].Percentage = 150 }},
		{"auto escalation level out of range", func(p *domain.SLAPolicy) {
			p.AutoEscalation = domain.AutoEscalationConfig{Enabled: true, EscalationLevel: 0}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewPolicyService(newStubPolicyRepo())
			policy := validPolicy()
			tc.mutate(policy)
			_, err := svc.CreatePolicy(context.Background(), policy)
			assert.Error(t, err)
		})
	}

	svc := NewPolicyService(newStubPolicyRepo())
	policy := validPolicy()
	policy.EscalationLevels[0].Action = domain.EscalationActionAssign
	policy.EscalationLevels[0].AssignTo = &assignee
	_, err := svc.CreatePolicy(context.Background(), policy)
	assert.NoError(t, err)
}

func TestCreatePolicyKeepsSingleDefault(t *testing.T) {
	repo := newStubPolicyRepo()
	svc := NewPolicyService(repo)

	first := validPolicy()
	first.IsDefault = true
	created, err := svc.CreatePolicy(context.Background(), first)
	require.NoError(t, err)

	second := validPolicy()
	second.Name = "premium"
	second.IsDefault = true
	_, err = svc.CreatePolicy(context.Background(), second)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDefault)

	defaults := 0
	for _, policy := range repo.policies {
		if policy.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestUpdatePolicyRequiresID(t *testing.T) {
	svc := NewPolicyService(newStubPolicyRepo())
	_, err := svc.UpdatePolicy(context.Background(), validPolicy())
	assert.Error(t, err)
}
