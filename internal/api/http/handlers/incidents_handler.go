package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// principalActor identifies the authenticated caller in published events.
func principalActor(p auth.Principal) events.Actor {
	return events.Actor{Role: p.User.Role, ID: p.User.Email}
}

// IncidentsHandler manages incident lifecycle endpoints.
type IncidentsHandler struct {
	incidents *service.IncidentService
	history   *service.HistoryRecorder
	stats     *service.StatsService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService, history *service.HistoryRecorder, stats *service.StatsService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents, history: history, stats: stats}
}

// Create POST /incidents.
func (h *IncidentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateIncidentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	incident, err := h.incidents.Create(c.UserContext(), principalActor(*principal), service.IncidentCreateInput{
		Description: req.Description,
		Location:    req.Location,
		Floor:       req.Floor,
		Category:    req.Category,
		Severity:    req.Severity,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewIncidentResponse(incident)})
}

// List GET /incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	filter := service.IncidentListFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		Area:       c.Query("area"),
		AssigneeID: c.Query("assignee"),
	}
	incidents, err := h.incidents.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponses(incidents)})
}

// Mine GET /incidents/mine.
func (h *IncidentsHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	incidents, err := h.incidents.List(c.UserContext(), service.IncidentListFilter{
		ReporterID: principal.User.Email,
		Status:     c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponses(incidents)})
}

// Summary GET /incidents/summary.
func (h *IncidentsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.stats.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Get GET /incidents/:id.
func (h *IncidentsHandler) Get(c *fiber.Ctx) error {
	incident, err := h.incidents.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(incident)})
}

// History GET /incidents/:id/history.
func (h *IncidentsHandler) History(c *fiber.Ctx) error {
	// Confirm the incident exists so a bare id typo yields 404, not an
	// empty trail.
	if _, err := h.incidents.Get(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	entries, err := h.history.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryEntryResponses(entries)})
}

// UpdateStatus PUT /incidents/:id/status.
func (h *IncidentsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	incident, err := h.incidents.Transition(c.UserContext(), c.Params("id"), req.Status, principalActor(*principal))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIncidentResponse(incident)})
}

// Delete DELETE /incidents/:id.
func (h *IncidentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.incidents.Delete(c.UserContext(), c.Params("id"), principalActor(*principal)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}
