package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/service"
)

// TeamHandler wires HTTP → TeamService.
type TeamHandler struct {
	svc service.TeamService
}

// NewTeamHandler creates a TeamHandler instance.
func NewTeamHandler(svc service.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// Register mounts the team endpoints on the given router group.
func (h *TeamHandler) Register(r fiber.Router) {
	r.Get("/team/members", h.members)
	r.Post("/team/members", h.invite)
	r.Delete("/team/members/:login", h.remove)
}

func (h *TeamHandler) members(c *fiber.Ctx) error {
	members, err := h.svc.Members(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(members)
}

type inviteRequest struct {
	Login string `json:"login"`
	Role  string `json:"role,omitempty"`
}

// invite handles POST /team/members  { "login": "...", "role": "member" }
func (h *TeamHandler) invite(c *fiber.Ctx) error {
	var req inviteRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}
	if req.Login == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "login is required"))
	}

	member, err := h.svc.Invite(c.UserContext(), req.Login, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (h *TeamHandler) remove(c *fiber.Ctx) error {
	login := c.Params("login")
	if login == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "login is required"))
	}

	if err := h.svc.Remove(c.UserContext(), login); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
