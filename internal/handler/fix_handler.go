package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/service"
)

// FixHandler wires HTTP → FixService.
type FixHandler struct {
	svc service.FixService
}

// NewFixHandler creates a FixHandler instance.
func NewFixHandler(svc service.FixService) *FixHandler {
	return &FixHandler{svc: svc}
}

// Register mounts the issue auto-fix endpoints on the given router group.
func (h *FixHandler) Register(r fiber.Router) {
	r.Post("/issues/:owner/:name/:number/fix", h.startFix)
	r.Get("/issues/fixes/:id", h.getFix)
	r.Get("/issues/fixes", h.listFixes)
}

// startFix handles POST /issues/:owner/:name/:number/fix
func (h *FixHandler) startFix(c *fiber.Ctx) error {
	owner := c.Params("owner")
	name := c.Params("name")
	number, err := strconv.Atoi(c.Params("number"))
	if owner == "" || name == "" || err != nil || number <= 0 {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "owner, name and a positive issue number are required"))
	}

	fix, err := h.svc.StartFix(c.UserContext(), owner, name, number)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fix)
}

// getFix handles GET /issues/fixes/:id — the endpoint the UI polls.
func (h *FixHandler) getFix(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "fix id is required"))
	}

	fix, err := h.svc.GetFix(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fix)
}

// listFixes handles GET /issues/fixes?repo=owner/name
func (h *FixHandler) listFixes(c *fiber.Ctx) error {
	repo := c.Query("repo")
	if repo == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo parameter is required"))
	}

	fixes, err := h.svc.ListFixes(c.UserContext(), repo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fixes)
}
