package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"book_review_api/internal/api"
	"book_review_api/internal/config"
	"book_review_api/internal/domain"
	"book_review_api/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// newTestRouter builds a full router against an in-memory sqlite database and
// a miniredis instance, mirroring the production wiring.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every request sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Review{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		AdminRole:      "admin",
		PasswordMinLen: 8,
		PasswordMaxLen: 64,
		AuthRateLimit:  1000, // High enough to never interfere with tests
		AuthRateBurst:  1000,
	}
	return api.NewRouter(db, rdb, cfg), db, cfg
}

// testPassword is the plaintext credential used for directly created users
const testPassword = "password123"

// createUser inserts a user with a hashed credential
func createUser(t *testing.T, db *gorm.DB, username, role string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createBook inserts a book directly
func createBook(t *testing.T, db *gorm.DB, title, author string) domain.Book {
	t.Helper()
	book := domain.Book{Title: title, Author: author, Description: "test book"}
	require.NoError(t, db.Create(&book).Error)
	return book
}

// accessToken mints a valid access token for a user
func accessToken(t *testing.T, cfg *config.Config, userID uint) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, cfg.JWTSecret)
	require.NoError(t, err)
	return token
}

// doRequest performs a JSON request against the router, optionally with a
// bearer token, and returns the recorder
func doRequest(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body into a generic map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

// errorFields extracts the field→message map from a validation error body
func errorFields(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decodeBody(t, w)
	fields, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected field errors, got %s", w.Body.String())
	return fields
}
