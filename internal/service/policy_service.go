package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PolicyService owns admin-facing SLA policy CRUD. Invalid policies are
// rejected here, at write time, so the monitor never has to discover them
// during evaluation.
type PolicyService struct {
	policies repository.PolicyRepository
}

// NewPolicyService constructs the service.
func NewPolicyService(policies repository.PolicyRepository) *PolicyService {
	return &PolicyService{policies: policies}
}

// CreatePolicy validates and stores a new policy.
func (s *PolicyService) CreatePolicy(ctx context.Context, policy *domain.SLAPolicy) (*domain.SLAPolicy, error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, err
	}
	if policy.IsDefault {
		if err := s.policies.ClearDefaultExcept(ctx, policy.ID); err != nil {
			return nil, err
		}
	}
	return policy, nil
}

// UpdatePolicy validates and stores policy changes.
func (s *PolicyService) UpdatePolicy(ctx context.Context, policy *domain.SLAPolicy) (*domain.SLAPolicy, error) {
	if policy.ID == "" {
		return nil, apperrors.NewValidationError("policy id required", nil)
	}
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, err
	}
	if policy.IsDefault {
		if err := s.policies.ClearDefaultExcept(ctx, policy.ID); err != nil {
			return nil, err
		}
	}
	return policy, nil
}

// DeletePolicy removes a policy. Tickets keep their snapshotted commitments.
func (s *PolicyService) DeletePolicy(ctx context.Context, id string) error {
	return s.policies.Delete(ctx, id)
}

// GetPolicy fetches a single policy.
func (s *PolicyService) GetPolicy(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	return s.policies.GetByID(ctx, id)
}

// ListPolicies returns all policies.
func (s *PolicyService) ListPolicies(ctx context.Context) ([]domain.SLAPolicy, error) {
	return s.policies.List(ctx)
}

func validatePolicy(policy *domain.SLAPolicy) error {
	if strings.TrimSpace(policy.Name) == "" {
		return apperrors.NewValidationError("policy name required", nil)
	}
	for priority, rule := range policy.PriorityRules {
		if rule.ResponseTimeHours < 0 || rule.ResolutionTimeHours < 0 {
			return apperrors.NewValidationError("sla hours must not be negative",
				map[string]any{"priority": priority})
		}
	}
	for _, level := range policy.EscalationLevels {
		if level.Level < 1 || level.Level > 5 {
			return apperrors.NewValidationError("escalation level must be between 1 and 5",
				map[string]any{"level": level.Level})
		}
		if level.PercentageThreshold < 0 || level.PercentageThreshold > 100 {
			return apperrors.NewValidationError("escalation threshold must be between 0 and 100",
				map[string]any{"level": level.Level, "threshold": level.PercentageThreshold})
		}
		if !domain.ValidEscalationAction(level.Action) {
			return apperrors.NewValidationError(fmt.Sprintf("unknown escalation action %q", level.Action),
				map[string]any{"level": level.Level})
		}
		if level.Action == domain.EscalationActionAssign && (level.AssignTo == nil || *level.AssignTo == "") {
			return apperrors.NewValidationError("assign action requires assign_to",
				map[string]any{"level": level.Level})
		}
	}
	for _, warning := range policy.Warnings.Levels {
		if warning.Percentage < 0 || warning.Percentage > 100 {
			return apperrors.NewValidationError("warning percentage must be between 0 and 100",
				map[string]any{"percentage": warning.Percentage})
		}
	}
	if policy.AutoEscalation.Enabled {
		if policy.AutoEscalation.EscalationLevel < 1 || policy.AutoEscalation.EscalationLevel > 5 {
			return apperrors.NewValidationError("auto escalation level must be between 1 and 5", nil)
		}
	}
	return nil
}
