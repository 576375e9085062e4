package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/models"
	"github.com/gittldr/server/internal/service"
)

// QnAHandler wires HTTP → QnAService.
type QnAHandler struct {
	svc service.QnAService
}

// NewQnAHandler returns a handler instance.
func NewQnAHandler(svc service.QnAService) *QnAHandler {
	return &QnAHandler{svc: svc}
}

// Register mounts the /qna endpoints on the supplied router group.
func (h *QnAHandler) Register(r fiber.Router) {
	r.Post("/qna", h.ask)
	r.Get("/qna", h.history)
}

// ask handles POST /qna  { "repo": "owner/name", "question": "..." }
func (h *QnAHandler) ask(c *fiber.Ctx) error {
	var req models.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}
	if req.Repo == "" || req.Question == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo and question are required"))
	}

	q, err := h.svc.Ask(c.UserContext(), req.Repo, req.Question)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// history handles GET /qna?repo=owner/name&limit=20
func (h *QnAHandler) history(c *fiber.Ctx) error {
	repo := c.Query("repo")
	if repo == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo parameter is required"))
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer"))
	}

	questions, err := h.svc.History(c.UserContext(), repo, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(questions)
}
