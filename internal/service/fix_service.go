package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/models"
)

// ---- External contracts ----------------------------------------------------

// FixStore persists auto-fix jobs.
type FixStore interface {
	Insert(ctx context.Context, fix models.IssueFix) error
	FindByID(ctx context.Context, id string) (models.IssueFix, error)
	ListByRepo(ctx context.Context, repoID string) ([]models.IssueFix, error)
	UpdateResult(ctx context.Context, id, status, patch, explanation, errMsg string) error
}

// FixBackend drives auto-fix jobs at the AI backend.
type FixBackend interface {
	SubmitFix(ctx context.Context, req aiclient.FixRequest) (aiclient.FixJob, error)
	GetFixJob(ctx context.Context, id string) (aiclient.FixJob, error)
}

// IssueGetter fetches one GitHub issue.
type IssueGetter interface {
	GetIssue(ctx context.Context, owner, name string, number int) (models.Issue, error)
}

// RepoFinder looks up a connected repository.
type RepoFinder interface {
	FindByID(ctx context.Context, id string) (models.Repository, error)
}

// ---- Service interface + implementation ------------------------------------

// FixService starts auto-fix jobs and mirrors their backend state into the
// store. Each started job gets a poll loop that re-fetches backend status on
// a fixed cadence until a terminal state, an overall timeout, or shutdown.
type FixService interface {
	StartFix(ctx context.Context, owner, name string, issueNumber int) (models.IssueFix, error)
	GetFix(ctx context.Context, id string) (models.IssueFix, error)
	ListFixes(ctx context.Context, repoID string) ([]models.IssueFix, error)

	// Shutdown stops all poll loops and waits for them to finish.
	Shutdown()
}

type fixService struct {
	store   FixStore
	backend FixBackend
	gh      IssueGetter
	repos   RepoFinder

	pollInterval time.Duration
	pollTimeout  time.Duration

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewFixService wires dependencies. Poll loops are children of the service's
// own context so Shutdown can stop them independently of request contexts.
func NewFixService(store FixStore, backend FixBackend, gh IssueGetter, repos RepoFinder, pollInterval, pollTimeout time.Duration) FixService {
	ctx, cancel := context.WithCancel(context.Background())
	return &fixService{
		store:        store,
		backend:      backend,
		gh:           gh,
		repos:        repos,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// StartFix fetches the issue, submits it to the backend, persists the job in
// QUEUED state and kicks off the poll loop.
func (s *fixService) StartFix(ctx context.Context, owner, name string, issueNumber int) (models.IssueFix, error) {
	repo, err := s.repos.FindByID(ctx, owner+"/"+name)
	if err != nil {
		return models.IssueFix{}, err
	}

	issue, err := s.gh.GetIssue(ctx, owner, name, issueNumber)
	if err != nil {
		return models.IssueFix{}, err
	}

	job, err := s.backend.SubmitFix(ctx, aiclient.FixRequest{
		Repo:       repo.FullName,
		IssueNum:   issue.Number,
		IssueTitle: issue.Title,
		IssueBody:  issue.Body,
	})
	if err != nil {
		return models.IssueFix{}, err
	}

	now := time.Now()
	fix := models.IssueFix{
		ID:          uuid.NewString(),
		RepoID:      repo.FullName,
		IssueNumber: issue.Number,
		IssueTitle:  issue.Title,
		BackendID:   job.ID,
		Status:      models.FixQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, fix); err != nil {
		return models.IssueFix{}, err
	}

	s.wg.Add(1)
	go s.poll(fix.ID, fix.BackendID)

	return fix, nil
}

func (s *fixService) GetFix(ctx context.Context, id string) (models.IssueFix, error) {
	return s.store.FindByID(ctx, id)
}

func (s *fixService) ListFixes(ctx context.Context, repoID string) ([]models.IssueFix, error) {
	return s.store.ListByRepo(ctx, repoID)
}

func (s *fixService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// poll re-fetches backend status on a ticker until a terminal state. Unknown
// status strings are recorded but never end the loop; only COMPLETED and
// FAILED (or the overall timeout) do.
func (s *fixService) poll(fixID, backendID string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.pollTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	lastStatus := models.FixQueued

	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				log.Printf("fix job %s timed out after %v", fixID, s.pollTimeout)
				s.updateResult(fixID, models.FixFailed, "", "", "fix job timed out")
			}
			return
		case <-ticker.C:
		}

		job, err := s.backend.GetFixJob(ctx, backendID)
		if err != nil {
			// Transient backend errors: keep polling.
			log.Printf("fix job %s status fetch failed: %v", fixID, err)
			continue
		}

		if job.Status != lastStatus {
			lastStatus = job.Status
			s.updateResult(fixID, job.Status, job.Patch, job.Explanation, job.Error)
		}

		if models.TerminalFixStatus(job.Status) {
			return
		}
	}
}

func (s *fixService) updateResult(fixID, status, patch, explanation, errMsg string) {
	// Job state writes outlive the (possibly expired) poll context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.UpdateResult(ctx, fixID, status, patch, explanation, errMsg); err != nil {
		log.Printf("failed to persist status %s for fix job %s: %v", status, fixID, err)
	}
}
