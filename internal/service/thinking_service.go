package service

import (
	"context"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/models"
)

// ThinkingBackend opens SSE streams at the AI backend.
type ThinkingBackend interface {
	StreamThinking(ctx context.Context, req aiclient.ThinkingRequest) (*aiclient.ThinkingStream, error)
}

// ThinkingService streams incremental AI reasoning for a question about a
// connected repository. The heavy lifting (SSE framing, provider-specific
// buffering) lives in the aiclient stream consumer; this layer only guards
// the repo state.
type ThinkingService interface {
	Stream(ctx context.Context, repoID, question, model string) (*aiclient.ThinkingStream, error)
}

type thinkingService struct {
	repos   RepoFinder
	backend ThinkingBackend
}

// NewThinkingService wires dependencies.
func NewThinkingService(repos RepoFinder, backend ThinkingBackend) ThinkingService {
	return &thinkingService{repos: repos, backend: backend}
}

func (s *thinkingService) Stream(ctx context.Context, repoID, question, model string) (*aiclient.ThinkingStream, error) {
	repo, err := s.repos.FindByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if repo.Status != models.StatusReady {
		return nil, models.ErrRepoNotReady
	}

	return s.backend.StreamThinking(ctx, aiclient.ThinkingRequest{
		Repo:     repoID,
		Question: question,
		Model:    model,
	})
}
