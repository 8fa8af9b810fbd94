package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-engine/internal/api/dto"
	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/service"
)

// SLAHandler exposes the read-only SLA surface.
type SLAHandler struct {
	service *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{service: slaService}
}

// GetStatus GET /tickets/:id/sla.
func (h *SLAHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.service.GetStatus(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statusResponse(status)})
}

// ListBreaches GET /sla/breaches.
func (h *SLAHandler) ListBreaches(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	breaches, err := h.service.BreachList(c.Context(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.SLAStatusResponse, 0, len(breaches))
	for i := range breaches {
		items = append(items, statusResponse(&breaches[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetStatistics GET /sla/statistics.
func (h *SLAHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.Context(), parseStatisticsQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SLAStatisticsResponse{
		TotalTickets:           stats.TotalTickets,
		BreachedTickets:        stats.BreachedTickets,
		WarnedTickets:          stats.WarnedTickets,
		EscalatedTickets:       stats.EscalatedTickets,
		BreachRate:             stats.BreachRate,
		AvgResponseTimeHours:   stats.AvgResponseTimeHours,
		AvgResolutionTimeHours: stats.AvgResolutionTimeHours,
	}})
}

func parseStatisticsQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	return filter
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func statusResponse(status *service.SLAStatus) dto.SLAStatusResponse {
	resp := dto.SLAStatusResponse{
		TicketID:           status.TicketID,
		PolicyName:         status.PolicyName,
		ResponseDeadline:   status.ResponseDeadline,
		ResolutionDeadline: status.ResolutionDeadline,
		Percentage:         status.Percentage,
		Breached:           status.Breached,
		BreachAt:           status.BreachAt,
		WarningsSent:       status.WarningsSent,
		EscalationHistory:  status.EscalationHistory,
		Metrics:            status.Metrics,
	}
	if status.BreachType != nil {
		breachType := string(*status.BreachType)
		resp.BreachType = &breachType
	}
	return resp
}
