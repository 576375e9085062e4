package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/gittldr/server/internal/service"
)

// ThinkingHandler wires HTTP → ThinkingService, re-emitting the backend's
// reasoning stream as SSE.
type ThinkingHandler struct {
	svc service.ThinkingService
}

// NewThinkingHandler returns a handler instance.
func NewThinkingHandler(svc service.ThinkingService) *ThinkingHandler {
	return &ThinkingHandler{svc: svc}
}

// Register mounts POST /thinking on the supplied router group.
func (h *ThinkingHandler) Register(r fiber.Router) {
	r.Post("/thinking", h.stream)
}

type thinkingRequest struct {
	Repo     string `json:"repo"`
	Question string `json:"question"`
	Model    string `json:"model,omitempty"`
}

type thinkingEvent struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// stream handles POST /thinking  { "repo": "...", "question": "...", "model": "..." }
//
// The response is an SSE stream of {"text": "..."} frames ending with
// `data: [DONE]`. A failed write (client went away) cancels the upstream
// read.
func (h *ThinkingHandler) stream(c *fiber.Ctx) error {
	var req thinkingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid JSON body"))
	}
	if req.Repo == "" || req.Question == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "repo and question are required"))
	}

	// The stream writer runs after this handler returns, so it cannot use
	// the request context; it gets its own, cancelled on write failure.
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := h.svc.Stream(ctx, req.Repo, req.Question, req.Model)
	if err != nil {
		cancel()
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for text := range stream.Events {
			if err := writeSSE(w, thinkingEvent{Text: text}); err != nil {
				// Client disconnected; stop reading upstream.
				return
			}
		}

		if err := stream.Err(); err != nil {
			log.Printf("thinking stream for %s ended with error: %v", req.Repo, err)
			_ = writeSSE(w, thinkingEvent{Error: err.Error()})
			return
		}

		_, _ = w.WriteString("data: [DONE]\n\n")
		_ = w.Flush()
	}))

	return nil
}

func writeSSE(w *bufio.Writer, ev thinkingEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.WriteString("data: " + string(payload) + "\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
