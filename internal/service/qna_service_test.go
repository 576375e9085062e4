package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gittldr/server/internal/models"
)

type fakeChunkSearcher struct {
	repo   models.Repository
	chunks []models.CodeChunk
}

func (f *fakeChunkSearcher) FindByID(_ context.Context, id string) (models.Repository, error) {
	if f.repo.ID == "" {
		return models.Repository{}, models.ErrRepoNotFound
	}
	return f.repo, nil
}

func (f *fakeChunkSearcher) ChunkVectorSearch(context.Context, string, []float32, int) ([]models.CodeChunk, error) {
	return f.chunks, nil
}

type memQuestionStore struct {
	saved []models.Question
}

func (s *memQuestionStore) Insert(_ context.Context, q models.Question) error {
	s.saved = append(s.saved, q)
	return nil
}

func (s *memQuestionStore) ListByRepo(_ context.Context, repoID string, limit int) ([]models.Question, error) {
	return s.saved, nil
}

func TestQnAService_Ask(t *testing.T) {
	searcher := &fakeChunkSearcher{
		repo: models.Repository{ID: "octo/hello", Status: models.StatusReady},
		chunks: []models.CodeChunk{
			{File: "main.go", Text: "func main() {}", Score: 0.91},
			{File: "util.go", Text: "func helper() {}", Score: 0.52},
		},
	}
	store := &memQuestionStore{}
	svc := NewQnAService(searcher, store, NewDummyEmbedder(), NewDummyLLM())

	q, err := svc.Ask(context.Background(), "octo/hello", "what does main do?")
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.NotEmpty(t, q.Answer)
	assert.Equal(t, "octo/hello", q.RepoID)
	assert.Len(t, q.Sources, 2)
	assert.Equal(t, "main.go", q.Sources[0].File)
	assert.Equal(t, 0.91, q.Confidence) // top chunk score

	require.Len(t, store.saved, 1)
	assert.Equal(t, q.ID, store.saved[0].ID)
}

func TestQnAService_RejectsUnreadyRepo(t *testing.T) {
	searcher := &fakeChunkSearcher{
		repo: models.Repository{ID: "octo/hello", Status: models.StatusProcessing},
	}
	svc := NewQnAService(searcher, &memQuestionStore{}, NewDummyEmbedder(), NewDummyLLM())

	_, err := svc.Ask(context.Background(), "octo/hello", "anything?")
	assert.ErrorIs(t, err, models.ErrRepoNotReady)
}

func TestQnAService_RejectsEmptyQuestion(t *testing.T) {
	svc := NewQnAService(&fakeChunkSearcher{}, &memQuestionStore{}, NewDummyEmbedder(), NewDummyLLM())

	_, err := svc.Ask(context.Background(), "octo/hello", "   ")
	assert.Error(t, err)
}

func TestExcerptTruncates(t *testing.T) {
	long := strings.Repeat("a", 1000)

	out := excerpt(long)
	assert.Less(t, len(out), 1000)
	assert.True(t, strings.HasSuffix(out, "…"))

	assert.Equal(t, "short", excerpt("short"))
}

func TestExcerptKeepsRunesIntact(t *testing.T) {
	// 3-byte runes ensure the 400-byte cut lands mid-character.
	long := strings.Repeat("日", 200)

	out := excerpt(long)
	assert.True(t, utf8.ValidString(out), "truncation must not split a rune")
	assert.True(t, strings.HasSuffix(out, "…"))
	assert.Less(t, len(out), len(long))
}
