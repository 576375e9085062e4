package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittldr/server/internal/models"
)

func TestRespondErrorEnvelopeCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad request", fiber.NewError(fiber.StatusBadRequest, "repo must be owner/name"), fiber.StatusBadRequest, "BAD_REQUEST"},
		{"not found", fiber.NewError(fiber.StatusNotFound, "no such thing"), fiber.StatusNotFound, "NOT_FOUND"},
		{"bad gateway", fiber.NewError(fiber.StatusBadGateway, "upstream broke"), fiber.StatusBadGateway, "INTERNAL_ERROR"},
		{"other 4xx", fiber.NewError(fiber.StatusTeapot, "no"), fiber.StatusTeapot, "REQUEST_FAILED"},
		{"domain sentinel", models.ErrRepoNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				return respondError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var envelope ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
			assert.Equal(t, tt.code, envelope.Error.Code)
		})
	}
}
