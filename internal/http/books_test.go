package http

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/highlights-keeper/internal/kindle"
)

func importBody(books ...gin.H) gin.H {
	return gin.H{"books": books}
}

func book(title, author string, count int) gin.H {
	return gin.H{"title": title, "author": author, "highlight_count": count}
}

func TestBooksController_RequiresSession(t *testing.T) {
	srv := setupServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/books"},
		{http.MethodGet, "/api/books/count"},
		{http.MethodDelete, "/api/books?title=Dune"},
		{http.MethodPost, "/api/books/import"},
		{http.MethodPost, "/api/upgrade"},
	} {
		w := srv.do(route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestBooksController_ImportAndList(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	w := srv.do(http.MethodPost, "/api/books/import", importBody(
		book("Dune.epub", "Frank Herbert", 12),
		book("OceanofPDF.com Foundation", "", 3),
	), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result ImportResponse
	decode(t, w, &result)
	assert.Equal(t, 2, result.BooksCreated)
	assert.False(t, result.UpgradeRequired)

	w = srv.do(http.MethodGet, "/api/books", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Books []struct {
			Title          string `json:"title"`
			Author         string `json:"author"`
			HighlightCount int    `json:"highlight_count"`
		} `json:"books"`
		Count int `json:"count"`
	}
	decode(t, w, &list)
	require.Equal(t, 2, list.Count)

	titles := []string{list.Books[0].Title, list.Books[1].Title}
	assert.ElementsMatch(t, []string{"Dune", "Foundation"}, titles)
	for _, b := range list.Books {
		if b.Title == "Foundation" {
			assert.Equal(t, "Unknown Author", b.Author)
		}
	}

	w = srv.do(http.MethodGet, "/api/books/count", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())
}

func TestBooksController_HistoryIsPerUser(t *testing.T) {
	srv := setupServer(t)
	alice := srv.signIn(t, "alice@example.com")
	bob := srv.signIn(t, "bob@example.com")

	w := srv.do(http.MethodPost, "/api/books/import", importBody(book("Dune", "Frank Herbert", 1)), alice)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodGet, "/api/books/count", nil, bob)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestBooksController_FreeLimit(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	// Two of three fit under the free limit
	w := srv.do(http.MethodPost, "/api/books/import", importBody(
		book("Dune", "Frank Herbert", 1),
		book("Emma", "Jane Austen", 2),
		book("Ulysses", "James Joyce", 3),
	), token)
	require.Equal(t, http.StatusOK, w.Code)

	var result ImportResponse
	decode(t, w, &result)
	assert.Equal(t, 2, result.BooksCreated)
	assert.Equal(t, 1, result.BooksFailed)
	assert.True(t, result.UpgradeRequired)
	assert.NotEmpty(t, result.Reasons)

	// A batch with only new titles is refused outright
	w = srv.do(http.MethodPost, "/api/books/import", importBody(book("Ulysses", "James Joyce", 3)), token)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "upgrade_required")

	// Re-importing a known title is never gated
	w = srv.do(http.MethodPost, "/api/books/import", importBody(book("Dune", "Frank Herbert", 40)), token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, 1, result.BooksUpdated)
	assert.Equal(t, 40, result.Books[0].HighlightCount)
}

func TestBooksController_ImportValidation(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	w := srv.do(http.MethodPost, "/api/books/import", importBody(), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPost, "/api/books/import", importBody(book("Dune", "", -1)), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksController_RemoveBook(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	w := srv.do(http.MethodPost, "/api/books/import", importBody(book("Dune", "Frank Herbert", 1)), token)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodDelete, "/api/books?title=Dune", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	count, err := srv.books.CountBooks("reader@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Removing it again is still fine
	w = srv.do(http.MethodDelete, "/api/books?title=Dune", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(http.MethodDelete, "/api/books", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

const clippings = `Dune (Frank Herbert)
- Your Highlight on Location 10-12 | Added on Monday, 1 January 2024 10:00:00

I must not fear.
==========
Dune (Frank Herbert)
- Your Highlight on Location 200-201 | Added on Wednesday, 3 January 2024 08:00:00

The spice must flow.
==========
`

func TestBooksController_ImportKindle(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("clippings_file", "My Clippings.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(clippings))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/import/kindle", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := srv.books.GetBook("reader@example.com", "Dune")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 2, stored.HighlightCount)
	assert.Equal(t, "Frank Herbert", stored.Author)
}

func TestBooksController_ImportKindle_MissingFile(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	w := srv.do(http.MethodPost, "/api/books/import/kindle", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKindleInputs(t *testing.T) {
	inputs := KindleInputs([]kindle.BookSummary{
		{Title: "Dune", Author: "Frank Herbert", HighlightCount: 3, NoteCount: 1},
	})
	require.Len(t, inputs, 1)
	assert.Equal(t, "Dune", inputs[0].Title)
	assert.Equal(t, 3, inputs[0].HighlightCount)
}

func TestUpgradeController_Upgrade(t *testing.T) {
	srv := setupServer(t)
	token := srv.signIn(t, "reader@example.com")

	w := srv.do(http.MethodPost, "/api/upgrade", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var offer struct {
		CheckoutURL string   `json:"checkout_url"`
		Reasons     []string `json:"reasons"`
	}
	decode(t, w, &offer)
	assert.Equal(t, checkoutURL, offer.CheckoutURL)
	assert.NotEmpty(t, offer.Reasons)
}
