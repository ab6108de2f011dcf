package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/highlights-keeper/internal/entities"
	"github.com/mrlokans/highlights-keeper/internal/kindle"
	"github.com/mrlokans/highlights-keeper/internal/services"
	"github.com/mrlokans/highlights-keeper/internal/subscription"
)

const maxKindleFileSize = 10 * 1024 * 1024 // 10 MB

// BookStore is the read and delete side of a user's import history.
type BookStore interface {
	ListBooks(userEmail string) ([]entities.Book, error)
	CountBooks(userEmail string) (int64, error)
	RemoveBook(userEmail, title string) error
}

type BooksController struct {
	store   BookStore
	imports *services.ImportService
	parser  *kindle.Parser
}

func NewBooksController(store BookStore, imports *services.ImportService, parser *kindle.Parser) *BooksController {
	if parser == nil {
		parser = kindle.NewParser()
	}
	return &BooksController{
		store:   store,
		imports: imports,
		parser:  parser,
	}
}

// ListBooks returns the caller's history, most recently imported first.
// GET /api/books
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.store.ListBooks(currentEmail(c))
	if err != nil {
		respondServiceError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// CountBooks returns how many titles the caller has imported.
// GET /api/books/count
func (bc *BooksController) CountBooks(c *gin.Context) {
	count, err := bc.store.CountBooks(currentEmail(c))
	if err != nil {
		respondServiceError(c, err, "count books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// RemoveBook deletes one title from the caller's history. Removing a title
// that is not there still succeeds.
// DELETE /api/books?title=...
func (bc *BooksController) RemoveBook(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		respondBadRequest(c, "title query parameter is required")
		return
	}

	if err := bc.store.RemoveBook(currentEmail(c), title); err != nil {
		respondServiceError(c, err, "remove book")
		return
	}
	respondSuccess(c, "book removed", nil)
}

type importRequest struct {
	Books []services.ImportInput `json:"books"`
}

// ImportResponse wraps a batch result with upgrade details when the free
// plan stopped some titles.
type ImportResponse struct {
	services.ImportResult
	UpgradeRequired bool     `json:"upgrade_required,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Import records a batch of books reported by a client.
// POST /api/books/import
func (bc *BooksController) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if len(req.Books) == 0 {
		respondBadRequest(c, "books must not be empty")
		return
	}

	result := bc.imports.ImportBatch(c.Request.Context(), "api", currentEmail(c), req.Books)
	bc.respondImport(c, result)
}

// ImportKindle records every book found in an uploaded My Clippings.txt.
// POST /api/books/import/kindle
func (bc *BooksController) ImportKindle(c *gin.Context) {
	file, header, err := c.Request.FormFile("clippings_file")
	if err != nil {
		respondBadRequest(c, "clippings file not provided")
		return
	}
	defer file.Close()

	if header.Size > maxKindleFileSize {
		respondBadRequest(c, fmt.Sprintf("file too large (max %d MB)", maxKindleFileSize/(1024*1024)))
		return
	}

	summaries, err := bc.parser.Summarize(io.LimitReader(file, maxKindleFileSize+1))
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("failed to parse clippings: %v", err))
		return
	}
	if len(summaries) == 0 {
		respondSuccess(c, "no books with highlights found in the clippings file", nil)
		return
	}

	result := bc.imports.ImportBatch(c.Request.Context(), "kindle", currentEmail(c), KindleInputs(summaries))
	bc.respondImport(c, result)
}

// KindleInputs turns parsed clippings into import inputs.
func KindleInputs(summaries []kindle.BookSummary) []services.ImportInput {
	inputs := make([]services.ImportInput, 0, len(summaries))
	for _, s := range summaries {
		inputs = append(inputs, services.ImportInput{
			Title:          s.Title,
			Author:         s.Author,
			HighlightCount: s.HighlightCount,
		})
	}
	return inputs
}

// respondImport replies 200 when anything was recorded. When every book
// failed, the first failure decides the status.
func (bc *BooksController) respondImport(c *gin.Context, result services.ImportResult) {
	response := ImportResponse{ImportResult: result}
	for _, f := range result.Failures {
		if errors.Is(f.Err, subscription.ErrUpgradeRequired) {
			response.UpgradeRequired = true
			response.Reasons = subscription.Reasons
			break
		}
	}

	if len(result.Books) == 0 && len(result.Failures) > 0 {
		respondServiceError(c, result.Failures[0].Err, "import")
		return
	}

	c.JSON(http.StatusOK, response)
}
