package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/service"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// PoliciesHandler manages admin SLA policy endpoints.
type PoliciesHandler struct {
	service *service.PolicyService
}

// NewPoliciesHandler constructs handler.
func NewPoliciesHandler(policyService *service.PolicyService) *PoliciesHandler {
	return &PoliciesHandler{service: policyService}
}

// CreatePolicy POST /sla/policies.
func (h *PoliciesHandler) CreatePolicy(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy, err := h.service.CreatePolicy(c.Context(), policyFromRequest(&req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// UpdatePolicy PUT /sla/policies/:id.
func (h *PoliciesHandler) UpdatePolicy(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy := policyFromRequest(&req)
	policy.ID = c.Params("id")
	updated, err := h.service.UpdatePolicy(c.Context(), policy)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(updated)})
}

// DeletePolicy DELETE /sla/policies/:id.
func (h *PoliciesHandler) DeletePolicy(c *fiber.Ctx) error {
	if err := h.service.DeletePolicy(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPolicy GET /sla/policies/:id.
func (h *PoliciesHandler) GetPolicy(c *fiber.Ctx) error {
	policy, err := h.service.GetPolicy(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// ListPolicies GET /sla/policies.
func (h *PoliciesHandler) ListPolicies(c *fiber.Ctx) error {
	policies, err := h.service.ListPolicies(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func policyFromRequest(req *dto.PolicyRequest) *domain.SLAPolicy {
	return &domain.SLAPolicy{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		PriorityRules:    req.PriorityRules,
		EscalationLevels: req.EscalationLevels,
		Warnings:         req.Warnings,
		AutoEscalation:   req.AutoEscalation,
		IsActive:         req.IsActive,
		IsDefault:        req.IsDefault,
	}
}

func policyResponse(policy *domain.SLAPolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		ID:               policy.ID,
		Name:             policy.Name,
		Description:      policy.Description,
		Category:         policy.Category,
		PriorityRules:    policy.PriorityRules,
		EscalationLevels: policy.EscalationLevels,
		Warnings:         policy.Warnings,
		AutoEscalation:   policy.AutoEscalation,
		IsActive:         policy.IsActive,
		IsDefault:        policy.IsDefault,
		CreatedAt:        policy.CreatedAt,
		UpdatedAt:        policy.UpdatedAt,
	}
}
