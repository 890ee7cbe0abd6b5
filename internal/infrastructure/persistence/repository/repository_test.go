package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/port"
	"github.com/presslane/docflow/internal/domain/entity"
	"github.com/presslane/docflow/pkg/database"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "docflow_test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, zap.NewNop())
	require.NoError(t, migrator.RunMigrations(filepath.Join("..", "..", "..", "..", "migrations")))

	return db
}

func sampleDocument() *entity.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &entity.Document{
		PublicID:  "pub-123",
		Title:     "On Typestates",
		AuthorID:  "ada",
		Stage:     "DRAFT",
		Body:      "draft text",
		Metadata:  `{"author":"ada"}`,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, repo.Create(ctx, doc))
	require.NotZero(t, doc.ID)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.PublicID, got.PublicID)
	assert.Equal(t, doc.Stage, got.Stage)
	assert.Equal(t, doc.Body, got.Body)
	assert.Nil(t, got.PublishedAt)

	byPublic, err := repo.GetByPublicID(ctx, doc.PublicID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byPublic.ID)
}

func TestDocumentRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestDocumentRepository_Update(t *testing.T) {
	db := setupDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, repo.Create(ctx, doc))

	published := time.Now().UTC().Truncate(time.Second)
	doc.Stage = "PUBLISHED"
	doc.Approvals = 2
	doc.PublishedAt = &published
	doc.UpdatedAt = published
	require.NoError(t, repo.Update(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", got.Stage)
	assert.Equal(t, 2, got.Approvals)
	require.NotNil(t, got.PublishedAt)
}

func TestDocumentRepository_UpdateMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())

	doc := sampleDocument()
	doc.ID = 404
	err := repo.Update(context.Background(), doc)
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestHistoryRepository_RoundTrip(t *testing.T) {
	db := setupDB(t)
	docRepo := NewDocumentRepository(db, zap.NewNop())
	historyRepo := NewHistoryRepository(db, zap.NewNop())
	ctx := context.Background()

	doc := sampleDocument()
	require.NoError(t, docRepo.Create(ctx, doc))

	rows := []*entity.TransitionHistory{
		{DocumentID: doc.ID, ActorID: "ada", NewStage: "DRAFT", Trigger: "CREATE", Timestamp: time.Now()},
		{DocumentID: doc.ID, ActorID: "ada", PreviousStage: "DRAFT", NewStage: "IN_REVIEW", Trigger: "SUBMIT", Timestamp: time.Now()},
		{DocumentID: doc.ID, ActorID: "ron", PreviousStage: "IN_REVIEW", NewStage: "SECOND_REVIEW", Trigger: "APPROVE", Timestamp: time.Now()},
	}
	for _, h := range rows {
		require.NoError(t, historyRepo.Create(ctx, h))
	}

	got, err := historyRepo.GetByDocumentID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE", got[0].Trigger)
	assert.Equal(t, "APPROVE", got[2].Trigger)
	assert.Equal(t, "SECOND_REVIEW", got[2].NewStage)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())
	ctx := context.Background()

	doc := sampleDocument()
	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, doc); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, port.ErrNotFound)
}
