package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gittldr/server/internal/models"
)

// ---- Repository contract ---------------------------------------------------

// ChunkSearcher exposes vector search over embedded code chunks.
type ChunkSearcher interface {
	FindByID(ctx context.Context, id string) (models.Repository, error)
	ChunkVectorSearch(ctx context.Context, repoID string, queryVec []float32, k int) ([]models.CodeChunk, error)
}

// QuestionStore persists the Q&A history.
type QuestionStore interface {
	Insert(ctx context.Context, q models.Question) error
	ListByRepo(ctx context.Context, repoID string, limit int) ([]models.Question, error)
}

// ---- Service interface + implementation ------------------------------------

// QnAService answers natural-language questions about connected repos via
// the retrieve → generate loop: embed the question, vector-search chunks,
// run the LLM, persist the exchange.
type QnAService interface {
	Ask(ctx context.Context, repoID, question string) (models.Question, error)
	History(ctx context.Context, repoID string, limit int) ([]models.Question, error)
}

type qnaService struct {
	chunks    ChunkSearcher
	questions QuestionStore
	embedder  EmbeddingClient
	llm       LLMClient
}

// NewQnAService wires dependencies.
func NewQnAService(chunks ChunkSearcher, questions QuestionStore, embedder EmbeddingClient, llm LLMClient) QnAService {
	return &qnaService{
		chunks:    chunks,
		questions: questions,
		embedder:  embedder,
		llm:       llm,
	}
}

// Ask runs one retrieval-augmented answer and records it.
func (s *qnaService) Ask(ctx context.Context, repoID, question string) (models.Question, error) {
	if strings.TrimSpace(question) == "" {
		return models.Question{}, fmt.Errorf("question cannot be empty")
	}

	// Questions only make sense against a fully embedded repo.
	repo, err := s.chunks.FindByID(ctx, repoID)
	if err != nil {
		return models.Question{}, err
	}
	if repo.Status != models.StatusReady {
		return models.Question{}, models.ErrRepoNotReady
	}

	qVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := s.chunks.ChunkVectorSearch(ctx, repoID, qVec, 10)
	if err != nil {
		return models.Question{}, fmt.Errorf("vector search failed: %w", err)
	}

	texts := make([]string, len(chunks))
	sources := make([]models.QuestionSource, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		sources[i] = models.QuestionSource{
			File:      c.File,
			Excerpt:   excerpt(c.Text),
			Relevance: c.Score,
		}
	}

	answer, err := s.llm.GenerateAnswer(ctx, question, texts)
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	q := models.Question{
		ID:         uuid.NewString(),
		RepoID:     repoID,
		Question:   question,
		Answer:     answer,
		Sources:    sources,
		Confidence: chunks[0].Score,
		CreatedAt:  time.Now(),
	}
	if err := s.questions.Insert(ctx, q); err != nil {
		return q, err // answer still has value
	}

	return q, nil
}

func (s *qnaService) History(ctx context.Context, repoID string, limit int) ([]models.Question, error) {
	return s.questions.ListByRepo(ctx, repoID, limit)
}

// excerpt trims a chunk down to what the UI shows inline. The cut backs off
// to a rune boundary so a multi-byte character is never split.
func excerpt(text string) string {
	const maxLen = 400
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "…"
}
