package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/borrows"
	"LMS-backend/internal/library_mgmt/users"
)

// ===== Error model (books/users/borrows と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

type Clock interface {
	Now() time.Time
}

// 台帳の時計に追従する。期限超過の判定が貸出・返却の日付と同じ時刻源になる
type ledgerClock struct{ ledger *borrows.Service }

func (c ledgerClock) Now() time.Time { return c.ledger.Now() }

// ===== Service =====

const DefaultMostBorrowedLimit = 10

// Service は管理レポート。毎回O(n)で台帳を走査して再計算する。
type Service struct {
	catalog   *books.Service
	directory *users.Service
	ledger    *borrows.Service
	clock     Clock
}

func NewService(catalog *books.Service, directory *users.Service, ledger *borrows.Service) *Service {
	return &Service{catalog: catalog, directory: directory, ledger: ledger, clock: ledgerClock{ledger}}
}

// Overdue は貸出中かつ期限日が今日より前のレコードを返す。
func (s *Service) Overdue(ctx context.Context) OverdueReport {
	today := dateOnly(s.clock.Now())
	titles, _ := s.bookMaps(ctx)
	names := s.usernameMap(ctx)

	out := OverdueReport{Overdue: []OverdueEntry{}}
	for _, rec := range s.ledger.Records(ctx) {
		if !rec.Active() || !rec.DueDate.Before(today) {
			continue
		}
		out.Overdue = append(out.Overdue, OverdueEntry{
			BorrowID:    rec.BorrowID,
			UserID:      rec.UserID,
			Username:    names[rec.UserID],
			BookID:      rec.BookID,
			BookTitle:   titles[rec.BookID],
			BorrowDate:  rec.BorrowDate.Format(borrows.DateLayout),
			DueDate:     rec.DueDate.Format(borrows.DateLayout),
			DaysOverdue: int(today.Sub(rec.DueDate).Hours() / 24),
		})
	}
	out.TotalOverdue = len(out.Overdue)
	return out
}

// MostBorrowed は全履歴を蔵書別に集計し、貸出回数の降順で上位 limit 件を返す。
// 同数の場合は先に登場した蔵書が先（安定ソート）。
func (s *Service) MostBorrowed(ctx context.Context, limit int) MostBorrowedReport {
	if limit <= 0 {
		limit = DefaultMostBorrowedLimit
	}

	counts := make(map[int]int)
	var order []int // 初登場順
	for _, rec := range s.ledger.Records(ctx) {
		if _, seen := counts[rec.BookID]; !seen {
			order = append(order, rec.BookID)
		}
		counts[rec.BookID]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	titles, authors := s.bookMaps(ctx)
	out := MostBorrowedReport{MostBorrowed: []MostBorrowedEntry{}}
	for _, bookID := range order {
		out.MostBorrowed = append(out.MostBorrowed, MostBorrowedEntry{
			BookID:      bookID,
			BookTitle:   titles[bookID],
			Author:      authors[bookID],
			BorrowCount: counts[bookID],
		})
	}
	return out
}

// History は全履歴、userID 指定時はその利用者の履歴のみを返す。
func (s *Service) History(ctx context.Context, userID *int) (HistoryReport, error) {
	if userID != nil && !s.directory.Exists(ctx, *userID) {
		return HistoryReport{}, ErrNotFound(fmt.Sprintf("user %d not found", *userID))
	}

	titles, _ := s.bookMaps(ctx)
	names := s.usernameMap(ctx)
	out := HistoryReport{History: []HistoryEntry{}}
	for _, rec := range s.ledger.Records(ctx) {
		if userID != nil && rec.UserID != *userID {
			continue
		}
		out.History = append(out.History, historyEntry(rec, titles, names))
	}
	out.TotalRecords = len(out.History)
	return out, nil
}

func (s *Service) Summary(ctx context.Context) Summary {
	booksSnap := s.catalog.Snapshot(ctx)
	records := s.ledger.Records(ctx)

	sum := Summary{
		TotalBooks:   len(booksSnap),
		TotalUsers:   len(s.directory.Snapshot(ctx)),
		TotalBorrows: len(records),
	}
	for _, b := range booksSnap {
		sum.TotalCopiesAvailable += b.AvailableCopies
	}
	for _, rec := range records {
		if rec.Active() {
			sum.ActiveBorrows++
		} else {
			sum.ReturnedBorrows++
		}
	}
	return sum
}

// Full は summary と全データを一括で返す。
func (s *Service) Full(ctx context.Context) FullReport {
	out := FullReport{
		Summary: s.Summary(ctx),
		Books:   s.catalog.List(ctx),
		Users:   s.directory.List(ctx),
		Borrows: []HistoryEntry{},
	}
	titles, _ := s.bookMaps(ctx)
	names := s.usernameMap(ctx)
	for _, rec := range s.ledger.Records(ctx) {
		out.Borrows = append(out.Borrows, historyEntry(rec, titles, names))
	}
	return out
}

// ---------- helpers ----------

func historyEntry(rec borrows.Record, titles, names map[int]string) HistoryEntry {
	entry := HistoryEntry{
		BorrowID:   rec.BorrowID,
		UserID:     rec.UserID,
		Username:   names[rec.UserID],
		BookID:     rec.BookID,
		BookTitle:  titles[rec.BookID],
		BorrowDate: rec.BorrowDate.Format(borrows.DateLayout),
		DueDate:    rec.DueDate.Format(borrows.DateLayout),
		Status:     string(rec.Status),
	}
	if rec.ReturnDate != nil {
		rd := rec.ReturnDate.Format(borrows.DateLayout)
		entry.ReturnDate = &rd
	}
	return entry
}

func (s *Service) bookMaps(ctx context.Context) (titles, authors map[int]string) {
	titles = make(map[int]string)
	authors = make(map[int]string)
	for _, b := range s.catalog.Snapshot(ctx) {
		titles[b.ID] = b.Title
		authors[b.ID] = b.Author
	}
	return titles, authors
}

func (s *Service) usernameMap(ctx context.Context) map[int]string {
	names := make(map[int]string)
	for _, u := range s.directory.Snapshot(ctx) {
		names[u.ID] = u.Username
	}
	return names
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
