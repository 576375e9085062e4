package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittldr/server/internal/aiclient"
	"github.com/gittldr/server/internal/models"
)

type memFixStore struct {
	mu   sync.Mutex
	jobs map[string]models.IssueFix
}

func newMemFixStore() *memFixStore {
	return &memFixStore{jobs: make(map[string]models.IssueFix)}
}

func (s *memFixStore) Insert(_ context.Context, fix models.IssueFix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[fix.ID] = fix
	return nil
}

func (s *memFixStore) FindByID(_ context.Context, id string) (models.IssueFix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fix, ok := s.jobs[id]
	if !ok {
		return models.IssueFix{}, models.ErrFixNotFound
	}
	return fix, nil
}

func (s *memFixStore) ListByRepo(_ context.Context, repoID string) ([]models.IssueFix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.IssueFix
	for _, f := range s.jobs {
		if f.RepoID == repoID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memFixStore) UpdateResult(_ context.Context, id, status, patch, explanation, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fix, ok := s.jobs[id]
	if !ok {
		return models.ErrFixNotFound
	}
	fix.Status = status
	if patch != "" {
		fix.Patch = patch
	}
	if explanation != "" {
		fix.Explanation = explanation
	}
	if errMsg != "" {
		fix.Error = errMsg
	}
	s.jobs[id] = fix
	return nil
}

// scriptedBackend replays a fixed status sequence, then repeats the last one.
type scriptedBackend struct {
	mu       sync.Mutex
	statuses []aiclient.FixJob
	i        int
}

func (b *scriptedBackend) SubmitFix(context.Context, aiclient.FixRequest) (aiclient.FixJob, error) {
	return aiclient.FixJob{ID: "backend-1", Status: models.FixQueued}, nil
}

func (b *scriptedBackend) GetFixJob(context.Context, string) (aiclient.FixJob, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job := b.statuses[b.i]
	if b.i < len(b.statuses)-1 {
		b.i++
	}
	return job, nil
}

type stubIssueGetter struct{}

func (stubIssueGetter) GetIssue(_ context.Context, owner, name string, number int) (models.Issue, error) {
	return models.Issue{Number: number, Title: "flaky test", Body: "it flakes"}, nil
}

type stubRepoFinder struct{}

func (stubRepoFinder) FindByID(_ context.Context, id string) (models.Repository, error) {
	return models.Repository{ID: id, FullName: id, Status: models.StatusReady}, nil
}

func waitForStatus(t *testing.T, svc FixService, id, want string) models.IssueFix {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fix, err := svc.GetFix(context.Background(), id)
		require.NoError(t, err)
		if fix.Status == want {
			return fix
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return models.IssueFix{}
}

func TestFixService_PollsUntilCompleted(t *testing.T) {
	backend := &scriptedBackend{statuses: []aiclient.FixJob{
		{ID: "backend-1", Status: models.FixQueued},
		{ID: "backend-1", Status: models.FixRunning},
		{ID: "backend-1", Status: models.FixCompleted, Patch: "--- a/x\n+++ b/x", Explanation: "fixed"},
	}}
	svc := NewFixService(newMemFixStore(), backend, stubIssueGetter{}, stubRepoFinder{}, 5*time.Millisecond, time.Second)
	defer svc.Shutdown()

	fix, err := svc.StartFix(context.Background(), "octo", "hello", 7)
	require.NoError(t, err)
	assert.Equal(t, models.FixQueued, fix.Status)
	assert.Equal(t, "octo/hello", fix.RepoID)

	done := waitForStatus(t, svc, fix.ID, models.FixCompleted)
	assert.Equal(t, "--- a/x\n+++ b/x", done.Patch)
	assert.Equal(t, "fixed", done.Explanation)
}

func TestFixService_UnknownStatusKeepsPolling(t *testing.T) {
	backend := &scriptedBackend{statuses: []aiclient.FixJob{
		{ID: "backend-1", Status: "WARMING_UP"}, // not one of ours
		{ID: "backend-1", Status: models.FixFailed, Error: "model exploded"},
	}}
	svc := NewFixService(newMemFixStore(), backend, stubIssueGetter{}, stubRepoFinder{}, 5*time.Millisecond, time.Second)
	defer svc.Shutdown()

	fix, err := svc.StartFix(context.Background(), "octo", "hello", 7)
	require.NoError(t, err)

	done := waitForStatus(t, svc, fix.ID, models.FixFailed)
	assert.Equal(t, "model exploded", done.Error)
}

func TestFixService_TimeoutMarksFailed(t *testing.T) {
	backend := &scriptedBackend{statuses: []aiclient.FixJob{
		{ID: "backend-1", Status: models.FixRunning}, // never finishes
	}}
	svc := NewFixService(newMemFixStore(), backend, stubIssueGetter{}, stubRepoFinder{}, 5*time.Millisecond, 50*time.Millisecond)
	defer svc.Shutdown()

	fix, err := svc.StartFix(context.Background(), "octo", "hello", 7)
	require.NoError(t, err)

	done := waitForStatus(t, svc, fix.ID, models.FixFailed)
	assert.Contains(t, done.Error, "timed out")
}

func TestFixService_ShutdownStopsPolling(t *testing.T) {
	backend := &scriptedBackend{statuses: []aiclient.FixJob{
		{ID: "backend-1", Status: models.FixRunning},
	}}
	svc := NewFixService(newMemFixStore(), backend, stubIssueGetter{}, stubRepoFinder{}, 5*time.Millisecond, time.Minute)

	_, err := svc.StartFix(context.Background(), "octo", "hello", 7)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not stop the poll loop")
	}
}
