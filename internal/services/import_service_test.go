package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/highlights-keeper/internal/database"
	"github.com/mrlokans/highlights-keeper/internal/database/books"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

const reader = "reader@example.com"

func setupBooks(t *testing.T) *books.Repository {
	t.Helper()

	opts := database.DefaultOptions()
	opts.LogLevel = logger.Silent
	manager := database.NewManager(filepath.Join(t.TempDir(), "import.db"), opts)
	t.Cleanup(func() { manager.Close() })

	db, err := manager.Open()
	require.NoError(t, err)
	return books.NewRepository(db.DB)
}

type recordingAuditor struct {
	sources  []string
	payloads []any
	err      error
}

func (a *recordingAuditor) SaveImport(source, _ string, payload any) (string, error) {
	a.sources = append(a.sources, source)
	a.payloads = append(a.payloads, payload)
	return "audit.json", a.err
}

func TestImportService_CleansMetadata(t *testing.T) {
	repo := setupBooks(t)
	svc := NewImportService(repo, nil, nil)

	book, err := svc.Import(context.Background(), reader, ImportInput{
		Title:          "OceanofPDF.com_Dune_-_Frank_Herbert (1).epub",
		Author:         "",
		HighlightCount: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, "Dune - Frank Herbert", book.Title)
	assert.Equal(t, "Unknown Author", book.Author)
	assert.Equal(t, 5, book.HighlightCount)
}

func TestImportService_ReimportReplacesCount(t *testing.T) {
	repo := setupBooks(t)
	svc := NewImportService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Import(ctx, reader, ImportInput{Title: "Dune", Author: "Frank Herbert", HighlightCount: 5})
	require.NoError(t, err)
	// A messy filename for the same book lands on the same row
	_, err = svc.Import(ctx, reader, ImportInput{Title: "Dune.epub", Author: "Frank Herbert", HighlightCount: 8})
	require.NoError(t, err)

	list, err := repo.ListBooks(reader)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 8, list[0].HighlightCount)
}

func TestImportService_RejectsNegativeCount(t *testing.T) {
	svc := NewImportService(setupBooks(t), nil, nil)

	_, err := svc.Import(context.Background(), reader, ImportInput{Title: "Dune", HighlightCount: -1})

	assert.ErrorIs(t, err, ErrInvalidHighlightCount)
}

func TestImportService_GateAppliesOnlyToNewTitles(t *testing.T) {
	repo := setupBooks(t)
	gate := subscription.NewGate(nil, repo, 1)
	svc := NewImportService(repo, gate, nil)
	ctx := context.Background()

	_, err := svc.Import(ctx, reader, ImportInput{Title: "Dune", HighlightCount: 1})
	require.NoError(t, err)

	_, err = svc.Import(ctx, reader, ImportInput{Title: "1984", HighlightCount: 1})
	assert.ErrorIs(t, err, subscription.ErrUpgradeRequired)

	// Existing titles can still be refreshed at the limit
	book, err := svc.Import(ctx, reader, ImportInput{Title: "Dune", HighlightCount: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, book.HighlightCount)
}

func TestImportService_ImportBatch(t *testing.T) {
	repo := setupBooks(t)
	gate := subscription.NewGate(nil, repo, 2)
	auditor := &recordingAuditor{}
	svc := NewImportService(repo, gate, auditor)

	_, err := svc.Import(context.Background(), reader, ImportInput{Title: "Dune", HighlightCount: 1})
	require.NoError(t, err)

	inputs := []ImportInput{
		{Title: "Dune", Author: "Frank Herbert", HighlightCount: 4},
		{Title: "1984", Author: "George Orwell", HighlightCount: 2},
		{Title: "Solaris", Author: "Stanisław Lem", HighlightCount: 3},
		{Title: "Broken", HighlightCount: -5},
	}

	result := svc.ImportBatch(context.Background(), "kindle", reader, inputs)

	assert.Equal(t, 4, result.BooksProcessed)
	assert.Equal(t, 1, result.BooksCreated)
	assert.Equal(t, 1, result.BooksUpdated)
	assert.Equal(t, 2, result.BooksFailed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "Solaris", result.Failures[0].Title)
	assert.ErrorIs(t, result.Failures[0].Err, subscription.ErrUpgradeRequired)
	assert.Equal(t, "Broken", result.Failures[1].Title)
	assert.ErrorIs(t, result.Failures[1].Err, ErrInvalidHighlightCount)

	assert.Equal(t, []string{"kindle"}, auditor.sources)
	assert.Equal(t, inputs, auditor.payloads[0])

	count, err := repo.CountBooks(reader)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestImportService_ImportBatch_AuditFailureIsNotFatal(t *testing.T) {
	repo := setupBooks(t)
	svc := NewImportService(repo, nil, &recordingAuditor{err: errors.New("disk full")})

	result := svc.ImportBatch(context.Background(), "api", reader, []ImportInput{{Title: "Dune", HighlightCount: 1}})

	assert.Equal(t, 1, result.BooksCreated)
	assert.Zero(t, result.BooksFailed)
}

func TestImportService_ImportBatch_Cancelled(t *testing.T) {
	svc := NewImportService(setupBooks(t), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.ImportBatch(ctx, "api", reader, []ImportInput{{Title: "Dune", HighlightCount: 1}})

	assert.Zero(t, result.BooksProcessed)
	assert.Equal(t, 1, result.BooksFailed)
	assert.ErrorIs(t, result.Failures[0].Err, context.Canceled)
}
