package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libman/internal/auth"
	"libman/internal/config"
	"libman/internal/httpapi"
	"libman/internal/model"
	"libman/internal/repository"
	"libman/internal/service"
)

var testDBSeq int64

type testEnv struct {
	router  *gin.Engine
	authSvc *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:httptest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := repository.NewDB(config.DatabaseConfig{Driver: "sqlite", Path: dsn})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authSvc := service.NewAuthService(db, tokens)
	catalogSvc := service.NewCatalogService(db, nil)
	borrowSvc := service.NewBorrowService(db)
	server := httpapi.NewServer(authSvc, catalogSvc, borrowSvc, tokens)

	return &testEnv{router: server.Router(), authSvc: authSvc}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, httpapi.Response) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp httpapi.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]any)
	return data["access_token"].(string)
}

func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	_, err := e.authSvc.CreateAdmin(context.Background(), "Root", "root@example.com", "adminpw")
	require.NoError(t, err)
	return e.login(t, "root@example.com", "adminpw")
}

func (e *testEnv) seedBorrower(t *testing.T, email string) string {
	t.Helper()
	rec, _ := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Reader", "email": email, "password": "readerpw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return e.login(t, email, "readerpw")
}

func dueDateString() string {
	return time.Now().Add(72 * time.Hour).Format("2006-01-02")
}

func TestBorrowLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	reader := env.seedBorrower(t, "reader@example.com")

	rec, resp := env.do(t, http.MethodPost, "/api/category", admin, gin.H{"name": "Fiction"})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := uint(resp.Data.(map[string]any)["id"].(float64))

	rec, resp = env.do(t, http.MethodPost, "/api/book", admin, gin.H{
		"category_id": categoryID,
		"title":       "Dune",
		"author":      "Frank Herbert",
		"year":        1965,
		"quantity":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bookID := uint(resp.Data.(map[string]any)["id"].(float64))

	rec, resp = env.do(t, http.MethodPost, "/api/borrow", reader, gin.H{
		"book_id": bookID, "due_date": dueDateString(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Borrow created successfully", resp.Message)
	assert.Equal(t, "Dune", resp.Data.(map[string]any)["book"])

	rec, resp = env.do(t, http.MethodGet, "/api/borrow/current_borrow", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := resp.Data.([]any)
	require.Len(t, records, 1)
	borrowID := uint(records[0].(map[string]any)["borrow_id"].(float64))

	rec, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/borrow/return/%d", borrowID), reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Borrow returned successfully", resp.Message)

	// Retry is a no-op while the approval is pending.
	rec, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/borrow/return/%d", borrowID), reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "waiting for approve", resp.Message)

	// Borrowers cannot approve returns.
	rec, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/borrow/approve_return/%d", borrowID), reader, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/borrow/approve_return/%d", borrowID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Approve return book successfully", resp.Message)
	assert.Equal(t, string(model.StatusReturned), resp.Data.(map[string]any)["status"])

	rec, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/borrow/approve_return/%d", borrowID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Borrow already returned", resp.Message)

	// Every copy is back on the shelf.
	rec, resp = env.do(t, http.MethodGet, "/api/book", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	books := resp.Data.([]any)
	require.Len(t, books, 1)
	assert.EqualValues(t, 2, books[0].(map[string]any)["available_quantity"])

	rec, resp = env.do(t, http.MethodGet, "/api/borrow/history", reader, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data.([]any), 1)
}

func TestBorrowRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/borrow", "", gin.H{
		"book_id": 1, "due_date": dueDateString(),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", resp.Status)
}

func TestCatalogWritesAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	reader := env.seedBorrower(t, "reader@example.com")

	rec, resp := env.do(t, http.MethodPost, "/api/category", reader, gin.H{"name": "Fiction"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "error", resp.Status)
}

func TestErrorKindMapping(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedAdmin(t)
	reader := env.seedBorrower(t, "reader@example.com")

	// Unknown borrow id -> 404.
	rec, _ := env.do(t, http.MethodPut, "/api/borrow/approve_return/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed due date -> 400 from the binding layer.
	rec, _ = env.do(t, http.MethodPost, "/api/borrow", reader, gin.H{
		"book_id": 1, "due_date": "not-a-date",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate active borrow -> 409.
	_, resp := env.do(t, http.MethodPost, "/api/category", admin, gin.H{"name": "Fiction"})
	categoryID := uint(resp.Data.(map[string]any)["id"].(float64))
	_, resp = env.do(t, http.MethodPost, "/api/book", admin, gin.H{
		"category_id": categoryID, "title": "Dune", "author": "A", "year": 1965, "quantity": 1,
	})
	bookID := uint(resp.Data.(map[string]any)["id"].(float64))

	borrowReq := gin.H{"book_id": bookID, "due_date": dueDateString()}
	rec, _ = env.do(t, http.MethodPost, "/api/borrow", reader, borrowReq)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/api/borrow", reader, borrowReq)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// No copies left for anyone else -> 409.
	other := env.seedBorrower(t, "other@example.com")
	rec, resp = env.do(t, http.MethodPost, "/api/borrow", other, borrowReq)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, resp.Message, "available")

	// Shrinking the total below the borrowed count -> 400.
	rec, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/book/%d", bookID), admin, gin.H{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedBorrower(t, "reader@example.com")

	rec, resp := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "reader@example.com", "password": "wrong1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", resp.Status)
}
