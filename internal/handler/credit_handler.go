package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/service"
)

// CreditHandler wires HTTP → CreditService.
type CreditHandler struct {
	svc service.CreditService
}

// NewCreditHandler creates a CreditHandler instance.
func NewCreditHandler(svc service.CreditService) *CreditHandler {
	return &CreditHandler{svc: svc}
}

// Register mounts the credit endpoints on the given router group.
func (h *CreditHandler) Register(r fiber.Router) {
	r.Get("/credits", h.balance)
	r.Post("/credits/grant", h.grant)
}

// balance handles GET /credits
func (h *CreditHandler) balance(c *fiber.Ctx) error {
	balance, err := h.svc.Balance(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(balance)
}

type grantRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// grant handles POST /credits/grant  { "amount": 100, "reason": "top-up" }
func (h *CreditHandler) grant(c *fiber.Ctx) error {
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}
	if req.Amount <= 0 {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "amount must be positive"))
	}
	if req.Reason == "" {
		req.Reason = "manual grant"
	}

	if err := h.svc.Grant(c.UserContext(), req.Amount, req.Reason); err != nil {
		return respondError(c, err)
	}

	balance, err := h.svc.Balance(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(balance)
}
