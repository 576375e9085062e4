package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/models"
)

// ---- Return DTO ------------------------------------------------------------

// RepoDetail combines stored metadata with live GitHub issues.
type RepoDetail struct {
	Repo   models.Repository `json:"repo"`
	Issues []models.Issue    `json:"issues"`
}

// ---- External contracts ----------------------------------------------------

// RepoStore persists connected repositories.
type RepoStore interface {
	Insert(ctx context.Context, repo models.Repository) error
	FindByID(ctx context.Context, id string) (models.Repository, error)
	List(ctx context.Context) ([]models.Repository, error)
	UpdateStatus(ctx context.Context, id, status, summary string) error
	Delete(ctx context.Context, id string) error
}

// RepoGitHub is the slice of the GitHub client the repo service needs.
type RepoGitHub interface {
	GetRepository(ctx context.Context, owner, name string) (models.GitHubRepo, error)
	ListIssues(ctx context.Context, owner, name, state string, perPage int) ([]models.Issue, error)
}

// Processor enqueues repository embedding at the AI backend.
type Processor interface {
	EnqueueProcessing(ctx context.Context, req aiclient.ProcessRequest) (aiclient.ProcessResponse, error)
}

// ---- Service interface + implementation ------------------------------------

// RepoService manages the lifecycle of connected repositories.
type RepoService interface {
	// Connect verifies the repo on GitHub, charges credits, persists it in
	// PENDING state and enqueues processing.
	Connect(ctx context.Context, owner, name string) (models.Repository, error)

	// List returns all connected repositories.
	List(ctx context.Context) ([]models.Repository, error)

	// Get returns stored metadata plus live open issues. A GitHub failure
	// is non-fatal: metadata alone is still returned.
	Get(ctx context.Context, owner, name string) (RepoDetail, error)

	// Disconnect removes a repository and its chunks.
	Disconnect(ctx context.Context, owner, name string) error

	// ListIssues fetches live issues for a repo from GitHub.
	ListIssues(ctx context.Context, owner, name, state string, perPage int) ([]models.Issue, error)

	// UpdateProcessing records a status transition reported by the AI
	// backend once it has picked up, finished or failed a processing job.
	UpdateProcessing(ctx context.Context, repoID, status, summary string) error
}

type repoService struct {
	store     RepoStore
	gh        RepoGitHub
	credits   CreditService
	processor Processor
}

// NewRepoService returns a concrete implementation.
func NewRepoService(store RepoStore, gh RepoGitHub, credits CreditService, processor Processor) RepoService {
	return &repoService{store: store, gh: gh, credits: credits, processor: processor}
}

// Connect runs the full connect workflow:
// GitHub lookup → duplicate check → credit debit → persist PENDING → enqueue.
func (s *repoService) Connect(ctx context.Context, owner, name string) (models.Repository, error) {
	ghRepo, err := s.gh.GetRepository(ctx, owner, name)
	if err != nil {
		return models.Repository{}, err
	}

	// A repo that is already connected must not be charged again.
	if _, err := s.store.FindByID(ctx, ghRepo.FullName); err == nil {
		return models.Repository{}, models.ErrRepoExists
	} else if !errors.Is(err, models.ErrRepoNotFound) {
		return models.Repository{}, err
	}

	check, err := s.credits.Estimate(ctx, owner, name)
	if err != nil {
		return models.Repository{}, err
	}

	if err := s.credits.Debit(ctx, ghRepo.FullName, check.FileCount); err != nil {
		return models.Repository{}, err
	}

	now := time.Now()
	repo := models.Repository{
		ID:          ghRepo.FullName,
		Owner:       ghRepo.Owner,
		Name:        ghRepo.Name,
		FullName:    ghRepo.FullName,
		Description: ghRepo.Description,
		Private:     ghRepo.Private,
		Stars:       ghRepo.Stars,
		Language:    ghRepo.Language,
		Branch:      ghRepo.DefaultBranch,
		FileCount:   check.FileCount,
		Status:      models.StatusPending,
		ConnectedAt: now,
		UpdatedAt:   now,
	}

	if err := s.store.Insert(ctx, repo); err != nil {
		if errors.Is(err, models.ErrRepoExists) {
			// Lost a race with a concurrent connect; give the credits back.
			if rerr := s.credits.Refund(ctx, repo.FullName, check.FileCount); rerr != nil {
				log.Printf("failed to refund credits for %s: %v", repo.FullName, rerr)
			}
		}
		return models.Repository{}, err
	}

	if _, err := s.processor.EnqueueProcessing(ctx, aiclient.ProcessRequest{
		Repo:   repo.FullName,
		Branch: repo.Branch,
	}); err != nil {
		// The repo stays PENDING=failed-to-enqueue; mark it so the UI can
		// offer a retry instead of waiting forever.
		log.Printf("failed to enqueue processing for %s: %v", repo.FullName, err)
		if uerr := s.store.UpdateStatus(ctx, repo.ID, models.StatusFailed, ""); uerr != nil {
			log.Printf("failed to mark %s failed: %v", repo.ID, uerr)
		}
		repo.Status = models.StatusFailed
	}

	return repo, nil
}

func (s *repoService) List(ctx context.Context) ([]models.Repository, error) {
	return s.store.List(ctx)
}

// Get fetches repository metadata from Mongo, then pulls live issues from GitHub.
func (s *repoService) Get(ctx context.Context, owner, name string) (RepoDetail, error) {
	repo, err := s.store.FindByID(ctx, owner+"/"+name)
	if err != nil {
		return RepoDetail{}, err
	}

	issues, err := s.gh.ListIssues(ctx, owner, name, "open", 20)
	if err != nil {
		// Non-fatal: still return repo metadata even if GitHub call fails.
		log.Printf("issue listing for %s failed: %v", repo.FullName, err)
		return RepoDetail{Repo: repo}, nil
	}

	return RepoDetail{Repo: repo, Issues: issues}, nil
}

func (s *repoService) Disconnect(ctx context.Context, owner, name string) error {
	return s.store.Delete(ctx, owner+"/"+name)
}

func (s *repoService) ListIssues(ctx context.Context, owner, name, state string, perPage int) ([]models.Issue, error) {
	return s.gh.ListIssues(ctx, owner, name, state, perPage)
}

func (s *repoService) UpdateProcessing(ctx context.Context, repoID, status, summary string) error {
	switch status {
	case models.StatusProcessing, models.StatusReady, models.StatusFailed:
	default:
		return fmt.Errorf("unknown processing status %q", status)
	}
	return s.store.UpdateStatus(ctx, repoID, status, summary)
}
