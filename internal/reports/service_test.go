package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/borrows"
	"LMS-backend/internal/library_mgmt/users"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fixture struct {
	catalog   *books.Service
	directory *users.Service
	ledger    *borrows.Service
	reports   *Service
	clock     *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	catalog := books.NewService(books.NewFileStore(filepath.Join(dir, "books.txt")))
	require.NoError(t, catalog.Load(ctx))
	directory := users.NewService(users.NewFileStore(filepath.Join(dir, "users.txt")))
	require.NoError(t, directory.Load(ctx))
	ledger := borrows.NewService(borrows.NewFileStore(filepath.Join(dir, "borrows.txt")), catalog, directory, 14)
	require.NoError(t, ledger.Load(ctx))

	// レポートの時計は台帳に追従するので、台帳側だけ差し替えれば両方が動く
	clock := &fakeClock{now: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)}
	ledger.SetClock(clock)
	svc := NewService(catalog, directory, ledger)

	return &fixture{catalog: catalog, directory: directory, ledger: ledger, reports: svc, clock: clock}
}

func (f *fixture) addBook(t *testing.T, title, isbn string, copies int) books.BookResponse {
	t.Helper()
	res, err := f.catalog.Create(context.Background(), books.CreateBookRequest{
		Title: title, Author: "Author " + title, ISBN: isbn, PublishedYear: 2020, AvailableCopies: copies,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) addUser(t *testing.T, username string) users.UserResponse {
	t.Helper()
	res, err := f.directory.Create(context.Background(), users.CreateUserRequest{
		Username: username, FullName: "Full Name", Email: username + "@example.com",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) borrow(t *testing.T, userID, bookID int) borrows.BorrowResponse {
	t.Helper()
	res, err := f.ledger.Borrow(context.Background(), borrows.BorrowRequest{UserID: userID, BookID: bookID})
	require.NoError(t, err)
	return res
}

func (f *fixture) giveBack(t *testing.T, borrowID int) {
	t.Helper()
	_, err := f.ledger.Return(context.Background(), borrows.ReturnRequest{BorrowID: &borrowID})
	require.NoError(t, err)
}

func TestOverdue(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Go入門", "978-1", 2)
	other := f.addBook(t, "並行処理", "978-2", 1)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	f.borrow(t, alice.UserID, book.BookID) // 期限は 2026-09-13
	returned := f.borrow(t, bob.UserID, book.BookID)
	f.giveBack(t, returned.BorrowID) // 返却済みは期限超過に含めない
	f.borrow(t, bob.UserID, other.BookID)

	// 期限日ちょうどはまだ超過ではない
	f.clock.now = time.Date(2026, 9, 13, 10, 0, 0, 0, time.UTC)
	assert.Zero(t, f.reports.Overdue(ctx).TotalOverdue)

	// 期限の6日後: 貸出中の2件だけが6日超過
	f.clock.now = time.Date(2026, 9, 19, 10, 0, 0, 0, time.UTC)
	rep := f.reports.Overdue(ctx)
	require.Equal(t, 2, rep.TotalOverdue)
	assert.Equal(t, "alice", rep.Overdue[0].Username)
	assert.Equal(t, "Go入門", rep.Overdue[0].BookTitle)
	assert.Equal(t, "2026-09-13", rep.Overdue[0].DueDate)
	assert.Equal(t, 6, rep.Overdue[0].DaysOverdue)
	assert.Equal(t, "bob", rep.Overdue[1].Username)
}

func TestMostBorrowed(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "Go入門", "978-1", 5)
	b := f.addBook(t, "並行処理", "978-2", 5)
	c := f.addBook(t, "設計論", "978-3", 5)
	alice := f.addUser(t, "alice")
	ctx := context.Background()

	// a を2回、b と c を1回ずつ（返却済みも集計対象）
	first := f.borrow(t, alice.UserID, a.BookID)
	f.giveBack(t, first.BorrowID)
	f.borrow(t, alice.UserID, a.BookID)
	f.borrow(t, alice.UserID, b.BookID)
	f.borrow(t, alice.UserID, c.BookID)

	rep := f.reports.MostBorrowed(ctx, 10)
	require.Len(t, rep.MostBorrowed, 3)
	assert.Equal(t, a.BookID, rep.MostBorrowed[0].BookID)
	assert.Equal(t, 2, rep.MostBorrowed[0].BorrowCount)
	// 同数は初登場順で安定
	assert.Equal(t, b.BookID, rep.MostBorrowed[1].BookID)
	assert.Equal(t, c.BookID, rep.MostBorrowed[2].BookID)

	// limit で打ち切る
	rep = f.reports.MostBorrowed(ctx, 2)
	require.Len(t, rep.MostBorrowed, 2)
	assert.Equal(t, "Go入門", rep.MostBorrowed[0].BookTitle)
	assert.Equal(t, "Author Go入門", rep.MostBorrowed[0].Author)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Go入門", "978-1", 5)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	first := f.borrow(t, alice.UserID, book.BookID)
	f.giveBack(t, first.BorrowID)
	f.borrow(t, bob.UserID, book.BookID)

	all, err := f.reports.History(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalRecords)
	assert.Equal(t, "alice", all.History[0].Username)
	assert.NotNil(t, all.History[0].ReturnDate)
	assert.Nil(t, all.History[1].ReturnDate)

	filtered, err := f.reports.History(ctx, &bob.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.TotalRecords)
	assert.Equal(t, "bob", filtered.History[0].Username)

	unknown := 999
	_, err = f.reports.History(ctx, &unknown)
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}

func TestSummaryAndFull(t *testing.T) {
	f := newFixture(t)
	a := f.addBook(t, "Go入門", "978-1", 3)
	f.addBook(t, "並行処理", "978-2", 1)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	first := f.borrow(t, alice.UserID, a.BookID)
	f.giveBack(t, first.BorrowID)
	f.borrow(t, bob.UserID, a.BookID)

	sum := f.reports.Summary(ctx)
	assert.Equal(t, 2, sum.TotalBooks)
	assert.Equal(t, 2, sum.TotalUsers)
	assert.Equal(t, 2, sum.TotalBorrows)
	assert.Equal(t, 1, sum.ActiveBorrows)
	assert.Equal(t, 1, sum.ReturnedBorrows)
	assert.Equal(t, 3, sum.TotalCopiesAvailable) // (3-1) + 1

	full := f.reports.Full(ctx)
	assert.Equal(t, sum, full.Summary)
	assert.Len(t, full.Books, 2)
	assert.Len(t, full.Users, 2)
	assert.Len(t, full.Borrows, 2)
}
