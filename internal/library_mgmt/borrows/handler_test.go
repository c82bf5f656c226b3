package borrows

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t, 14)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), f.ledger)
	return r, f
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBorrowEndpointStatusCodes(t *testing.T) {
	r, f := newTestRouter(t)
	book := f.addBook(t, "Go入門", "978-1", 1)
	user := f.addUser(t, "alice")

	// 201: 作成
	w := doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID, "book_id": book.BookID})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/borrows/1")

	var created BorrowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Go入門", created.BookTitle)

	// 404: 未知の利用者
	w = doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": 999, "book_id": book.BookID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 400: 在庫切れ（2人目の利用者）
	bob := f.addUser(t, "bob")
	w = doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": bob.UserID, "book_id": book.BookID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NO_COPIES_AVAILABLE")

	// 400: バインド失敗
	w = doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBorrowEndpointDuplicateConflict(t *testing.T) {
	r, f := newTestRouter(t)
	book := f.addBook(t, "Go入門", "978-1", 5)
	user := f.addUser(t, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID, "book_id": book.BookID})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID, "book_id": book.BookID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")
}

func TestReturnEndpoint(t *testing.T) {
	r, f := newTestRouter(t)
	book := f.addBook(t, "Go入門", "978-1", 1)
	user := f.addUser(t, "alice")

	doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID, "book_id": book.BookID})

	w := doJSON(t, r, http.MethodPost, "/api/v1/returns", gin.H{"borrow_id": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	// 400: 返却済み
	w = doJSON(t, r, http.MethodPost, "/api/v1/returns", gin.H{"borrow_id": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_RETURNED")

	// 404: 未知の貸出ID
	w = doJSON(t, r, http.MethodPost, "/api/v1/returns", gin.H{"borrow_id": 42})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackEndpoint(t *testing.T) {
	r, f := newTestRouter(t)
	book := f.addBook(t, "Go入門", "978-1", 1)
	user := f.addUser(t, "alice")
	doJSON(t, r, http.MethodPost, "/api/v1/borrows", gin.H{"user_id": user.UserID, "book_id": book.BookID})

	w := doJSON(t, r, http.MethodGet, "/api/v1/borrows/user/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var res TrackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.TotalBorrows)

	w = doJSON(t, r, http.MethodGet, "/api/v1/borrows/user/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/borrows/user/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	r, f := newTestRouter(t)
	book := f.addBook(t, "Go入門", "978-1", 2)

	w := doJSON(t, r, http.MethodGet, "/api/v1/books/1/availability", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var res AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, book.BookID, res.BookID)
	assert.True(t, res.IsAvailable)

	w = doJSON(t, r, http.MethodGet, "/api/v1/books/999/availability", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
