package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gittldr/server/internal/service"
)

// RegisterRoutes mounts every API endpoint under /api/v1.
func RegisterRoutes(app *fiber.App,
	repoSvc service.RepoService,
	creditSvc service.CreditService,
	qnaSvc service.QnAService,
	thinkingSvc service.ThinkingService,
	fixSvc service.FixService,
	teamSvc service.TeamService,
) {

	v1 := app.Group("/api/v1")
	NewRepoHandler(repoSvc, creditSvc).Register(v1)
	NewQnAHandler(qnaSvc).Register(v1)
	NewThinkingHandler(thinkingSvc).Register(v1)
	NewFixHandler(fixSvc).Register(v1)
	NewTeamHandler(teamSvc).Register(v1)
	NewCreditHandler(creditSvc).Register(v1)
}
