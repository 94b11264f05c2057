package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"book_review_api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooks_Public(t *testing.T) {
	r, db, _ := newTestRouter(t)
	createBook(t, db, "Dune", "Herbert")
	createBook(t, db, "Hyperion", "Simmons")

	w := doRequest(t, r, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["books"], 2)
	assert.Equal(t, false, body["cached"])

	// Second read is served from cache
	w = doRequest(t, r, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Len(t, body["books"], 2)
	assert.Equal(t, true, body["cached"])
}

func TestGetBook(t *testing.T) {
	r, db, _ := newTestRouter(t)
	book := createBook(t, db, "Dune", "Herbert")

	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/books/%d", book.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)["book"].(map[string]any)
	assert.Equal(t, "Dune", got["title"])
	assert.Equal(t, "Herbert", got["author"])

	w = doRequest(t, r, http.MethodGet, "/books/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodGet, "/books/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBook_AdminOnly(t *testing.T) {
	r, db, cfg := newTestRouter(t)
	admin := createUser(t, db, "admin", "admin")
	regular := createUser(t, db, "regular", "user")
	payload := map[string]any{"title": "Dune", "author": "Herbert", "description": "sand"}

	// Anonymous write is unauthorized
	w := doRequest(t, r, http.MethodPost, "/books", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Authenticated non-admin is forbidden
	w = doRequest(t, r, http.MethodPost, "/books", accessToken(t, cfg, regular.ID), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin succeeds
	w = doRequest(t, r, http.MethodPost, "/books", accessToken(t, cfg, admin.ID), payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decodeBody(t, w)["book"].(map[string]any)
	assert.Equal(t, "Dune", got["title"])

	var count int64
	require.NoError(t, db.Model(&domain.Book{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateBook_Validation(t *testing.T) {
	r, db, cfg := newTestRouter(t)
	admin := createUser(t, db, "admin", "admin")

	w := doRequest(t, r, http.MethodPost, "/books", accessToken(t, cfg, admin.ID), map[string]any{
		"description": "missing title and author",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := errorFields(t, w)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "author")
}

func TestUpdateBook_AdminOnly(t *testing.T) {
	r, db, cfg := newTestRouter(t)
	admin := createUser(t, db, "admin", "admin")
	regular := createUser(t, db, "regular", "user")
	book := createBook(t, db, "Dune", "Herbert")
	path := fmt.Sprintf("/books/%d", book.ID)

	// Non-admin update attempt is forbidden
	w := doRequest(t, r, http.MethodPut, path, accessToken(t, cfg, regular.ID), map[string]any{"title": "Hacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Anonymous read still works
	w = doRequest(t, r, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Admin PATCH updates only the provided fields
	w = doRequest(t, r, http.MethodPatch, path, accessToken(t, cfg, admin.ID), map[string]any{"title": "Dune Messiah"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated domain.Book
	require.NoError(t, db.First(&updated, book.ID).Error)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, "Herbert", updated.Author)

	// Updating a missing book is a 404
	w = doRequest(t, r, http.MethodPut, "/books/9999", accessToken(t, cfg, admin.ID), map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBook_CascadesReviews(t *testing.T) {
	r, db, cfg := newTestRouter(t)
	admin := createUser(t, db, "admin", "admin")
	reviewer := createUser(t, db, "reviewer", "user")
	book := createBook(t, db, "Dune", "Herbert")

	review := domain.Review{BookID: book.ID, UserID: reviewer.ID, Rating: 5, Comment: "great"}
	require.NoError(t, db.Omit("User").Create(&review).Error)

	// Non-admin cannot delete
	w := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/books/%d", book.ID), accessToken(t, cfg, reviewer.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin delete removes the book and its reviews
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/books/%d", book.ID), accessToken(t, cfg, admin.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/books/%d", book.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The dependent review is unreachable afterwards
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/reviews/%d", review.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, db.Model(&domain.Review{}).Where("book_id = ?", book.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListBooks_CacheInvalidatedOnCreate(t *testing.T) {
	r, db, cfg := newTestRouter(t)
	admin := createUser(t, db, "admin", "admin")
	createBook(t, db, "Dune", "Herbert")

	// Prime the cache
	w := doRequest(t, r, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["books"], 1)

	// Create a book through the surface; the listing cache must be dropped
	w = doRequest(t, r, http.MethodPost, "/books", accessToken(t, cfg, admin.ID), map[string]any{
		"title": "Hyperion", "author": "Simmons",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["books"], 2)
	assert.Equal(t, false, body["cached"])
}
