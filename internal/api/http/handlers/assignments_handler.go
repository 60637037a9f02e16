package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// AssignmentsHandler manages incident assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// Assign POST /incidents/:id/assign. An empty body or empty worker_id runs
// the matcher; a named worker bypasses the capacity scan but still has to
// serve the mapped area.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignIncidentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	incidentID := c.Params("id")
	if req.WorkerID != "" {
		assignment, err := h.service.AssignToWorker(c.UserContext(), incidentID, req.WorkerID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": assignment})
	}

	assignment, err := h.service.Assign(c.UserContext(), incidentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignment})
}
