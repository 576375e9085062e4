package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/service"
)

// RepoHandler wires HTTP → RepoService / CreditService.
type RepoHandler struct {
	svc     service.RepoService
	credits service.CreditService
}

// NewRepoHandler creates a new RepoHandler.
func NewRepoHandler(svc service.RepoService, credits service.CreditService) *RepoHandler {
	return &RepoHandler{svc: svc, credits: credits}
}

// Register mounts the repository endpoints on the supplied router group.
func (h *RepoHandler) Register(r fiber.Router) {
	r.Get("/repositories", h.list)
	r.Post("/repositories", h.connect)
	r.Post("/repositories/check-credits", h.checkCredits)
	r.Post("/repositories/status", h.processingStatus)
	r.Get("/repositories/:owner/:name", h.get)
	r.Delete("/repositories/:owner/:name", h.disconnect)
	r.Get("/repos/:owner/:name/issues", h.issues)
}

// list handles GET /repositories
func (h *RepoHandler) list(c *fiber.Ctx) error {
	repos, err := h.svc.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(repos)
}

type connectRequest struct {
	Repo string `json:"repo"` // "owner/name"
}

// connect handles POST /repositories  { "repo": "owner/name" }
func (h *RepoHandler) connect(c *fiber.Ctx) error {
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}

	owner, name, ok := splitFullName(req.Repo)
	if !ok {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo must be in owner/name form"))
	}

	repo, err := h.svc.Connect(c.UserContext(), owner, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(repo)
}

// checkCredits handles POST /repositories/check-credits  { "repo": "owner/name" }
func (h *RepoHandler) checkCredits(c *fiber.Ctx) error {
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}

	owner, name, ok := splitFullName(req.Repo)
	if !ok {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo must be in owner/name form"))
	}

	check, err := h.credits.Estimate(c.UserContext(), owner, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(check)
}

type statusCallback struct {
	Repo    string `json:"repo"`
	Status  string `json:"status"`
	Summary string `json:"summary,omitempty"`
}

// processingStatus handles POST /repositories/status — the callback the AI
// backend invokes as it works through a processing job.
func (h *RepoHandler) processingStatus(c *fiber.Ctx) error {
	var req statusCallback
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}
	if req.Repo == "" || req.Status == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo and status are required"))
	}

	if err := h.svc.UpdateProcessing(c.UserContext(), req.Repo, req.Status, req.Summary); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// get handles GET /repositories/:owner/:name
func (h *RepoHandler) get(c *fiber.Ctx) error {
	owner := c.Params("owner")
	name := c.Params("name")
	if owner == "" || name == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "owner and name are required"))
	}

	detail, err := h.svc.Get(c.UserContext(), owner, name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// disconnect handles DELETE /repositories/:owner/:name
func (h *RepoHandler) disconnect(c *fiber.Ctx) error {
	owner := c.Params("owner")
	name := c.Params("name")
	if owner == "" || name == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "owner and name are required"))
	}

	if err := h.svc.Disconnect(c.UserContext(), owner, name); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// issues handles GET /repos/:owner/:name/issues
func (h *RepoHandler) issues(c *fiber.Ctx) error {
	owner := c.Params("owner")
	name := c.Params("name")
	if owner == "" || name == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "owner and repository name are required"))
	}

	state := c.Query("state", "open")
	issues, err := h.svc.ListIssues(c.UserContext(), owner, name, state, 100)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(issues)
}

// splitFullName parses "owner/name".
func splitFullName(full string) (owner, name string, ok bool) {
	parts := strings.Split(strings.TrimSpace(full), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
