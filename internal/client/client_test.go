package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/borrows"
	"LMS-backend/internal/library_mgmt/users"
	"LMS-backend/internal/reports"
)

// 実ルータを httptest で立てて、クライアント経由で一巡させる
func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	ctx := context.Background()

	catalog := books.NewService(books.NewFileStore(filepath.Join(dir, "books.txt")))
	require.NoError(t, catalog.Load(ctx))
	directory := users.NewService(users.NewFileStore(filepath.Join(dir, "users.txt")))
	require.NoError(t, directory.Load(ctx))
	ledger := borrows.NewService(borrows.NewFileStore(filepath.Join(dir, "borrows.txt")), catalog, directory, 14)
	require.NoError(t, ledger.Load(ctx))
	catalog.SetInUseCheck(ledger.HasActiveForBook)
	directory.SetInUseCheck(ledger.HasActiveForUser)

	r := gin.New()
	api := r.Group("/api/v1")
	books.RegisterRoutes(api, catalog)
	users.RegisterRoutes(api, directory)
	borrows.RegisterRoutes(api, ledger)
	reports.RegisterRoutes(api, reports.NewService(catalog, directory, ledger))

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, New(ts.URL + "/api/v1/")
}

func TestBookLifecycle(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	created, err := c.CreateBook(ctx, books.CreateBookRequest{
		Title: "Go入門", Author: "山田", ISBN: "978-1", PublishedYear: 2021, AvailableCopies: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.BookID)

	got, err := c.GetBook(ctx, created.BookID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	title := "Go実践入門"
	updated, err := c.UpdateBook(ctx, created.BookID, books.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Go実践入門", updated.Title)
	assert.Equal(t, "山田", updated.Author)

	list, err := c.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteBook(ctx, created.BookID))
	list, err = c.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBorrowAndReturnFlow(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, books.CreateBookRequest{
		Title: "並行処理", Author: "佐藤", ISBN: "978-2", PublishedYear: 2019, AvailableCopies: 1,
	})
	require.NoError(t, err)
	user, err := c.CreateUser(ctx, users.CreateUserRequest{
		Username: "alice", FullName: "Alice Example", Email: "alice@example.com",
	})
	require.NoError(t, err)

	borrowed, err := c.Borrow(ctx, user.UserID, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, "borrowed", borrowed.Status)
	assert.Equal(t, "並行処理", borrowed.BookTitle)

	avail, err := c.CheckAvailability(ctx, book.BookID)
	require.NoError(t, err)
	assert.False(t, avail.IsAvailable)
	assert.Zero(t, avail.AvailableCopies)

	active, err := c.ListBorrowed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active.TotalBorrowed)

	track, err := c.TrackUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, track.TotalBorrows)

	returned, err := c.ReturnByID(ctx, borrowed.BorrowID)
	require.NoError(t, err)
	assert.Equal(t, "returned", returned.Status)
	require.NotNil(t, returned.ReturnDate)

	avail, err = c.CheckAvailability(ctx, book.BookID)
	require.NoError(t, err)
	assert.True(t, avail.IsAvailable)
}

func TestReturnByPair(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, books.CreateBookRequest{
		Title: "設計論", Author: "鈴木", ISBN: "978-3", PublishedYear: 2022, AvailableCopies: 2,
	})
	require.NoError(t, err)
	user, err := c.CreateUser(ctx, users.CreateUserRequest{
		Username: "bob", FullName: "Bob Example", Email: "bob@example.com",
	})
	require.NoError(t, err)

	_, err = c.Borrow(ctx, user.UserID, book.BookID)
	require.NoError(t, err)

	returned, err := c.ReturnByPair(ctx, user.UserID, book.BookID)
	require.NoError(t, err)
	assert.Equal(t, "returned", returned.Status)
}

func TestAPIErrorDecoding(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	_, err := c.GetBook(ctx, 999)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.NotEmpty(t, apiErr.Message)

	// 在庫切れはドメイン固有コードで返る
	book, err := c.CreateBook(ctx, books.CreateBookRequest{
		Title: "在庫ゼロ", Author: "高橋", ISBN: "978-4", PublishedYear: 2020, AvailableCopies: 0,
	})
	require.NoError(t, err)
	user, err := c.CreateUser(ctx, users.CreateUserRequest{
		Username: "carol", FullName: "Carol Example", Email: "carol@example.com",
	})
	require.NoError(t, err)

	_, err = c.Borrow(ctx, user.UserID, book.BookID)
	require.Error(t, err)
	apiErr, ok = err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "NO_COPIES_AVAILABLE", apiErr.Code)
}

func TestReportsEndpoints(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	book, err := c.CreateBook(ctx, books.CreateBookRequest{
		Title: "歴史", Author: "田中", ISBN: "978-5", PublishedYear: 2018, AvailableCopies: 2,
	})
	require.NoError(t, err)
	user, err := c.CreateUser(ctx, users.CreateUserRequest{
		Username: "dave", FullName: "Dave Example", Email: "dave@example.com",
	})
	require.NoError(t, err)
	_, err = c.Borrow(ctx, user.UserID, book.BookID)
	require.NoError(t, err)

	full, err := c.FullReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, full.Summary.TotalBooks)
	assert.Equal(t, 1, full.Summary.ActiveBorrows)

	overdue, err := c.OverdueReport(ctx)
	require.NoError(t, err)
	assert.Zero(t, overdue.TotalOverdue) // 借りた直後は超過なし

	most, err := c.MostBorrowedReport(ctx, 5)
	require.NoError(t, err)
	require.Len(t, most.MostBorrowed, 1)
	assert.Equal(t, 1, most.MostBorrowed[0].BorrowCount)

	history, err := c.HistoryReport(ctx, &user.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, history.TotalRecords)
}
