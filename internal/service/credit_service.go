package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gittldr/server/internal/models"
)

// Credit pricing. One credit per processed file; when the tree listing
// fails we fall back to an assumed repo size so the UI can still show a
// ballpark figure.
const (
	creditsPerFile    = 1
	fallbackFileCount = 50
)

// ---- External contracts ----------------------------------------------------

// TreeCounter resolves a repository and counts the files in its tree.
type TreeCounter interface {
	GetRepository(ctx context.Context, owner, name string) (models.GitHubRepo, error)
	CountFiles(ctx context.Context, owner, name, ref string) (int, error)
}

// CreditLedger persists debits and grants.
type CreditLedger interface {
	Append(ctx context.Context, e models.CreditEntry) error
	Balance(ctx context.Context) (int, error)
	Recent(ctx context.Context, limit int) ([]models.CreditEntry, error)
}

// ---- Service interface + implementation ------------------------------------

// CreditService estimates processing costs and keeps the workspace ledger.
type CreditService interface {
	// Estimate returns the credit cost of connecting a repository.
	// Results are memoized per repo full name for the configured TTL.
	Estimate(ctx context.Context, owner, name string) (models.CreditCheck, error)

	// Balance returns the current balance with recent ledger entries.
	Balance(ctx context.Context) (models.CreditBalance, error)

	// Debit charges credits for processing a repo. Fails with
	// models.ErrInsufficientCredits without writing anything when the
	// balance does not cover the amount.
	Debit(ctx context.Context, repo string, files int) error

	// Refund reverses a debit for a repo that never got connected.
	Refund(ctx context.Context, repo string, files int) error

	// Grant adds credits to the workspace.
	Grant(ctx context.Context, amount int, reason string) error
}

type cachedCheck struct {
	check   models.CreditCheck
	expires time.Time
}

type creditService struct {
	github TreeCounter
	ledger CreditLedger

	mu    sync.Mutex
	cache map[string]cachedCheck
	ttl   time.Duration
}

// NewCreditService wires the GitHub client and ledger.
func NewCreditService(github TreeCounter, ledger CreditLedger, cacheTTL time.Duration) CreditService {
	return &creditService{
		github: github,
		ledger: ledger,
		cache:  make(map[string]cachedCheck),
		ttl:    cacheTTL,
	}
}

// Estimate computes file count × per-file cost, memoized per repo.
// A fallback estimate (from a fixed assumed file count) is returned when the
// tree listing fails, and is deliberately not cached.
func (s *creditService) Estimate(ctx context.Context, owner, name string) (models.CreditCheck, error) {
	fullName := owner + "/" + name

	s.mu.Lock()
	if c, ok := s.cache[fullName]; ok && time.Now().Before(c.expires) {
		s.mu.Unlock()
		return c.check, nil
	}
	s.mu.Unlock()

	repo, err := s.github.GetRepository(ctx, owner, name)
	if err != nil {
		return models.CreditCheck{}, err
	}

	files, err := s.github.CountFiles(ctx, owner, name, repo.DefaultBranch)
	if err != nil {
		log.Printf("credit estimate for %s fell back to assumed size: %v", fullName, err)
		return models.CreditCheck{
			Repo:      fullName,
			FileCount: fallbackFileCount,
			Credits:   fallbackFileCount * creditsPerFile,
			Fallback:  true,
		}, nil
	}

	check := models.CreditCheck{
		Repo:      fullName,
		FileCount: files,
		Credits:   files * creditsPerFile,
	}

	s.mu.Lock()
	s.cache[fullName] = cachedCheck{check: check, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return check, nil
}

func (s *creditService) Balance(ctx context.Context) (models.CreditBalance, error) {
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		return models.CreditBalance{}, err
	}
	recent, err := s.ledger.Recent(ctx, 20)
	if err != nil {
		return models.CreditBalance{}, err
	}
	return models.CreditBalance{Balance: balance, Recent: recent}, nil
}

func (s *creditService) Debit(ctx context.Context, repo string, files int) error {
	amount := files * creditsPerFile

	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		return err
	}
	if balance < amount {
		return models.ErrInsufficientCredits
	}

	return s.ledger.Append(ctx, models.CreditEntry{
		ID:        uuid.NewString(),
		Repo:      repo,
		Amount:    -amount,
		Reason:    "repository processing",
		CreatedAt: time.Now(),
	})
}

func (s *creditService) Refund(ctx context.Context, repo string, files int) error {
	return s.ledger.Append(ctx, models.CreditEntry{
		ID:        uuid.NewString(),
		Repo:      repo,
		Amount:    files * creditsPerFile,
		Reason:    "refund: repository not connected",
		CreatedAt: time.Now(),
	})
}

func (s *creditService) Grant(ctx context.Context, amount int, reason string) error {
	return s.ledger.Append(ctx, models.CreditEntry{
		ID:        uuid.NewString(),
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
}
