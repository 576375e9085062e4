package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/models"
)

type memRepoStore struct {
	repos map[string]models.Repository
}

func newMemRepoStore() *memRepoStore {
	return &memRepoStore{repos: make(map[string]models.Repository)}
}

func (s *memRepoStore) Insert(_ context.Context, repo models.Repository) error {
	if _, ok := s.repos[repo.ID]; ok {
		return models.ErrRepoExists
	}
	s.repos[repo.ID] = repo
	return nil
}

func (s *memRepoStore) FindByID(_ context.Context, id string) (models.Repository, error) {
	repo, ok := s.repos[id]
	if !ok {
		return models.Repository{}, models.ErrRepoNotFound
	}
	return repo, nil
}

func (s *memRepoStore) List(context.Context) ([]models.Repository, error) {
	var out []models.Repository
	for _, r := range s.repos {
		out = append(out, r)
	}
	return out, nil
}

func (s *memRepoStore) UpdateStatus(_ context.Context, id, status, summary string) error {
	repo, ok := s.repos[id]
	if !ok {
		return models.ErrRepoNotFound
	}
	repo.Status = status
	if summary != "" {
		repo.Summary = summary
	}
	s.repos[id] = repo
	return nil
}

func (s *memRepoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.repos[id]; !ok {
		return models.ErrRepoNotFound
	}
	delete(s.repos, id)
	return nil
}

type fakeRepoGitHub struct {
	issuesErr error
}

func (f *fakeRepoGitHub) GetRepository(_ context.Context, owner, name string) (models.GitHubRepo, error) {
	return models.GitHubRepo{
		Owner:         owner,
		Name:          name,
		FullName:      owner + "/" + name,
		Description:   "a test repo",
		DefaultBranch: "main",
	}, nil
}

func (f *fakeRepoGitHub) ListIssues(context.Context, string, string, string, int) ([]models.Issue, error) {
	if f.issuesErr != nil {
		return nil, f.issuesErr
	}
	return []models.Issue{{Number: 1, Title: "bug"}}, nil
}

type fakeProcessor struct {
	enqueued []aiclient.ProcessRequest
	err      error
}

func (f *fakeProcessor) EnqueueProcessing(_ context.Context, req aiclient.ProcessRequest) (aiclient.ProcessResponse, error) {
	if f.err != nil {
		return aiclient.ProcessResponse{}, f.err
	}
	f.enqueued = append(f.enqueued, req)
	return aiclient.ProcessResponse{JobID: "job-1"}, nil
}

func newTestRepoService(store *memRepoStore, gh *fakeRepoGitHub, proc *fakeProcessor, startingCredits int) RepoService {
	ledger := &memLedger{}
	if startingCredits > 0 {
		ledger.entries = append(ledger.entries, models.CreditEntry{Amount: startingCredits})
	}
	credits := NewCreditService(&fakeTreeCounter{files: 10}, ledger, 0)
	return NewRepoService(store, gh, credits, proc)
}

func TestRepoService_Connect(t *testing.T) {
	store := newMemRepoStore()
	proc := &fakeProcessor{}
	svc := newTestRepoService(store, &fakeRepoGitHub{}, proc, 100)

	repo, err := svc.Connect(context.Background(), "octo", "hello")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, repo.Status)
	assert.Equal(t, "octo/hello", repo.ID)
	assert.Equal(t, 10, repo.FileCount)

	require.Len(t, proc.enqueued, 1)
	assert.Equal(t, "octo/hello", proc.enqueued[0].Repo)
	assert.Equal(t, "main", proc.enqueued[0].Branch)
}

func TestRepoService_ConnectInsufficientCredits(t *testing.T) {
	store := newMemRepoStore()
	svc := newTestRepoService(store, &fakeRepoGitHub{}, &fakeProcessor{}, 0)

	_, err := svc.Connect(context.Background(), "octo", "hello")
	assert.ErrorIs(t, err, models.ErrInsufficientCredits)
	assert.Empty(t, store.repos, "nothing should be persisted on a failed debit")
}

func TestRepoService_ConnectDuplicateDoesNotDebit(t *testing.T) {
	store := newMemRepoStore()
	store.repos["octo/hello"] = models.Repository{ID: "octo/hello", FullName: "octo/hello", Status: models.StatusReady}

	ledger := &memLedger{entries: []models.CreditEntry{{Amount: 100}}}
	credits := NewCreditService(&fakeTreeCounter{files: 10}, ledger, 0)
	svc := NewRepoService(store, &fakeRepoGitHub{}, credits, &fakeProcessor{})

	_, err := svc.Connect(context.Background(), "octo", "hello")
	assert.ErrorIs(t, err, models.ErrRepoExists)

	balance, err := ledger.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, balance, "a rejected duplicate must not consume credits")
	assert.Len(t, ledger.entries, 1)
}

// conflictInsertStore reports the repo as absent but rejects the insert, the
// way a concurrent connect racing past the duplicate check would.
type conflictInsertStore struct {
	*memRepoStore
}

func (s *conflictInsertStore) FindByID(context.Context, string) (models.Repository, error) {
	return models.Repository{}, models.ErrRepoNotFound
}

func (s *conflictInsertStore) Insert(context.Context, models.Repository) error {
	return models.ErrRepoExists
}

func TestRepoService_ConnectInsertConflictRefunds(t *testing.T) {
	ledger := &memLedger{entries: []models.CreditEntry{{Amount: 100}}}
	credits := NewCreditService(&fakeTreeCounter{files: 10}, ledger, 0)
	svc := NewRepoService(&conflictInsertStore{newMemRepoStore()}, &fakeRepoGitHub{}, credits, &fakeProcessor{})

	_, err := svc.Connect(context.Background(), "octo", "hello")
	assert.ErrorIs(t, err, models.ErrRepoExists)

	balance, err := ledger.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, balance, "the debit should be reversed")
}

func TestRepoService_ConnectEnqueueFailureMarksFailed(t *testing.T) {
	store := newMemRepoStore()
	svc := newTestRepoService(store, &fakeRepoGitHub{}, &fakeProcessor{err: errors.New("backend down")}, 100)

	repo, err := svc.Connect(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, repo.Status)

	stored, err := store.FindByID(context.Background(), "octo/hello")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
}

func TestRepoService_GetSurvivesGitHubFailure(t *testing.T) {
	store := newMemRepoStore()
	store.repos["octo/hello"] = models.Repository{ID: "octo/hello", FullName: "octo/hello", Status: models.StatusReady}

	svc := NewRepoService(store, &fakeRepoGitHub{issuesErr: errors.New("rate limited")}, nil, nil)

	detail, err := svc.Get(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", detail.Repo.ID)
	assert.Empty(t, detail.Issues)
}

func TestRepoService_UpdateProcessing(t *testing.T) {
	store := newMemRepoStore()
	store.repos["octo/hello"] = models.Repository{ID: "octo/hello", Status: models.StatusPending}
	svc := NewRepoService(store, &fakeRepoGitHub{}, nil, nil)

	err := svc.UpdateProcessing(context.Background(), "octo/hello", models.StatusReady, "a summary")
	require.NoError(t, err)

	repo, _ := store.FindByID(context.Background(), "octo/hello")
	assert.Equal(t, models.StatusReady, repo.Status)
	assert.Equal(t, "a summary", repo.Summary)

	err = svc.UpdateProcessing(context.Background(), "octo/hello", "NONSENSE", "")
	assert.Error(t, err)
}
