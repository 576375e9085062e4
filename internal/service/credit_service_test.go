package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittldr/server/internal/models"
)

type fakeTreeCounter struct {
	repoCalls  int
	countCalls int
	files      int
	countErr   error
}

func (f *fakeTreeCounter) GetRepository(_ context.Context, owner, name string) (models.GitHubRepo, error) {
	f.repoCalls++
	return models.GitHubRepo{
		Owner:         owner,
		Name:          name,
		FullName:      owner + "/" + name,
		DefaultBranch: "main",
	}, nil
}

func (f *fakeTreeCounter) CountFiles(_ context.Context, _, _, ref string) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.files, nil
}

type memLedger struct {
	entries []models.CreditEntry
}

func (l *memLedger) Append(_ context.Context, e models.CreditEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *memLedger) Balance(context.Context) (int, error) {
	total := 0
	for _, e := range l.entries {
		total += e.Amount
	}
	return total, nil
}

func (l *memLedger) Recent(_ context.Context, limit int) ([]models.CreditEntry, error) {
	if limit > len(l.entries) {
		limit = len(l.entries)
	}
	return l.entries[:limit], nil
}

func TestCreditService_EstimateIsCached(t *testing.T) {
	gh := &fakeTreeCounter{files: 120}
	svc := NewCreditService(gh, &memLedger{}, time.Minute)

	check, err := svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, 120, check.FileCount)
	assert.Equal(t, 120*creditsPerFile, check.Credits)
	assert.False(t, check.Fallback)

	// Second call is served from cache.
	_, err = svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, gh.repoCalls)
	assert.Equal(t, 1, gh.countCalls)
}

func TestCreditService_EstimateCacheExpires(t *testing.T) {
	gh := &fakeTreeCounter{files: 10}
	svc := NewCreditService(gh, &memLedger{}, 20*time.Millisecond)

	_, err := svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.Equal(t, 2, gh.countCalls)
}

func TestCreditService_FallbackEstimateNotCached(t *testing.T) {
	gh := &fakeTreeCounter{countErr: errors.New("tree too large")}
	svc := NewCreditService(gh, &memLedger{}, time.Minute)

	check, err := svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.True(t, check.Fallback)
	assert.Equal(t, fallbackFileCount, check.FileCount)

	// The fallback must not be memoized: the next call retries the listing.
	gh.countErr = nil
	gh.files = 7
	check, err = svc.Estimate(context.Background(), "octo", "hello")
	require.NoError(t, err)
	assert.False(t, check.Fallback)
	assert.Equal(t, 7, check.FileCount)
}

func TestCreditService_DebitChecksBalance(t *testing.T) {
	ledger := &memLedger{}
	svc := NewCreditService(&fakeTreeCounter{}, ledger, time.Minute)

	err := svc.Debit(context.Background(), "octo/hello", 10)
	assert.ErrorIs(t, err, models.ErrInsufficientCredits)
	assert.Empty(t, ledger.entries, "failed debit must not write a ledger entry")

	require.NoError(t, svc.Grant(context.Background(), 100, "signup"))
	require.NoError(t, svc.Debit(context.Background(), "octo/hello", 10))

	balance, err := svc.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 90, balance.Balance)

	last := ledger.entries[len(ledger.entries)-1]
	assert.Equal(t, -10*creditsPerFile, last.Amount)
	assert.Equal(t, "octo/hello", last.Repo)
}
