package borrows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/users"
)

// ===== Error model (books/users/reports と同型 + 台帳固有コード) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
	CodeNoCopies        Code = "NO_COPIES_AVAILABLE"
	CodeAlreadyReturned Code = "ALREADY_RETURNED"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }
func ErrNoCopies(msg string) *APIError { return &APIError{Code: CodeNoCopies, Message: msg} }
func ErrAlreadyReturned(msg string) *APIError {
	return &APIError{Code: CodeAlreadyReturned, Message: msg}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeNoCopies, CodeAlreadyReturned:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Metrics は貸出・返却のカウンタ収集。nil なら記録しない。
type Metrics interface {
	RecordBorrow()
	RecordReturn()
	RecordBorrowDenied(reason string)
}

// ===== Service本体 =====

// (user_id, book_id) の貸出中レコードを引くための副キー
type pairKey struct {
	userID int
	bookID int
}

// Service は貸出台帳。貸出・返却の状態遷移の唯一の書き手であり、
// 在庫数の唯一の外部変更者でもある。
type Service struct {
	mu        sync.Mutex
	store     Store
	catalog   *books.Service
	directory *users.Service
	clock     Clock
	loanDays  int
	metrics   Metrics

	records []Record    // 登録順を保持
	index   map[int]int // borrow_id -> records の位置
	active  map[pairKey]int
	nextID  int
}

func NewService(store Store, catalog *books.Service, directory *users.Service, loanDays int) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		directory: directory,
		clock:     realClock{},
		loanDays:  loanDays,
		index:     make(map[int]int),
		active:    make(map[pairKey]int),
		nextID:    1,
	}
}

func (s *Service) SetMetrics(m Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// SetClock は時計を差し替える（テスト用）。
func (s *Service) SetClock(c Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = c
}

// Load はストアから台帳を再構築する。next id は既存の最大値+1。
func (s *Service) Load(ctx context.Context) error {
	items, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = items
	s.index = make(map[int]int, len(items))
	s.active = make(map[pairKey]int)
	maxID := 0
	for i, rec := range items {
		s.index[rec.BorrowID] = i
		if rec.Active() {
			s.active[pairKey{rec.UserID, rec.BookID}] = i
		}
		if rec.BorrowID > maxID {
			maxID = rec.BorrowID
		}
	}
	s.nextID = maxID + 1
	return nil
}

// 貸出登録
func (s *Service) Borrow(ctx context.Context, req BorrowRequest) (BorrowResponse, error) {
	if req.UserID < 1 || req.BookID < 1 {
		return BorrowResponse{}, ErrInvalid("user_id and book_id must be positive integers")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.directory.Exists(ctx, req.UserID) {
		s.denied("user_not_found")
		return BorrowResponse{}, ErrNotFound(fmt.Sprintf("user %d not found", req.UserID))
	}

	book, err := s.catalog.GetBook(ctx, req.BookID)
	if err != nil {
		s.denied("book_not_found")
		return BorrowResponse{}, ErrNotFound(fmt.Sprintf("book %d not found", req.BookID))
	}
	if book.AvailableCopies <= 0 {
		s.denied("no_copies")
		return BorrowResponse{}, ErrNoCopies(fmt.Sprintf("no available copies for book %d", req.BookID))
	}
	if _, ok := s.active[pairKey{req.UserID, req.BookID}]; ok {
		s.denied("duplicate_borrow")
		return BorrowResponse{}, ErrConflict(fmt.Sprintf("user %d already has an active borrow of book %d", req.UserID, req.BookID))
	}

	today := dateOnly(s.clock.Now())
	rec := Record{
		BorrowID:   s.nextID,
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, s.loanDays),
		Status:     StatusBorrowed,
	}

	s.records = append(s.records, rec)
	pos := len(s.records) - 1
	s.index[rec.BorrowID] = pos
	s.active[pairKey{rec.UserID, rec.BookID}] = pos
	s.nextID++

	if err := s.store.SaveAll(ctx, s.records); err != nil {
		s.dropLast(rec)
		return BorrowResponse{}, err
	}

	// 台帳の書き戻しに続けて、同一リクエスト内で在庫を減らして書き戻す
	if err := s.catalog.AdjustCopies(ctx, rec.BookID, -1); err != nil {
		s.dropLast(rec)
		_ = s.store.SaveAll(ctx, s.records)
		return BorrowResponse{}, ErrInternal("failed to update book copies: " + err.Error())
	}

	if s.metrics != nil {
		s.metrics.RecordBorrow()
	}
	return buildResponse(rec, book.Title), nil
}

// 返却登録。borrow_id 指定が正。(user_id, book_id) の場合は貸出中レコードを引く
func (s *Service) Return(ctx context.Context, req ReturnRequest) (BorrowResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := s.resolveReturnTarget(req)
	if err != nil {
		return BorrowResponse{}, err
	}

	rec := s.records[pos]
	if rec.Status == StatusReturned {
		return BorrowResponse{}, ErrAlreadyReturned(fmt.Sprintf("borrow record %d has already been returned", rec.BorrowID))
	}

	prev := rec
	today := dateOnly(s.clock.Now())
	rec.ReturnDate = &today
	rec.Status = StatusReturned
	s.records[pos] = rec
	delete(s.active, pairKey{rec.UserID, rec.BookID})

	if err := s.store.SaveAll(ctx, s.records); err != nil {
		s.records[pos] = prev
		s.active[pairKey{rec.UserID, rec.BookID}] = pos
		return BorrowResponse{}, err
	}

	if err := s.catalog.AdjustCopies(ctx, rec.BookID, 1); err != nil {
		s.records[pos] = prev
		s.active[pairKey{rec.UserID, rec.BookID}] = pos
		_ = s.store.SaveAll(ctx, s.records)
		return BorrowResponse{}, ErrInternal("failed to update book copies: " + err.Error())
	}

	if s.metrics != nil {
		s.metrics.RecordReturn()
	}
	return buildResponse(rec, s.bookTitle(ctx, rec.BookID)), nil
}

// Track は指定利用者の全履歴を登録順で返す。
func (s *Service) Track(ctx context.Context, userID int) (TrackResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.directory.Exists(ctx, userID) {
		return TrackResponse{}, ErrNotFound(fmt.Sprintf("user %d not found", userID))
	}

	out := TrackResponse{UserID: userID, Borrows: []BorrowResponse{}}
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		out.Borrows = append(out.Borrows, buildResponse(rec, s.bookTitle(ctx, rec.BookID)))
	}
	out.TotalBorrows = len(out.Borrows)
	return out, nil
}

// ListActive は貸出中レコードのみを返す。
func (s *Service) ListActive(ctx context.Context) BorrowedBooksResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := BorrowedBooksResponse{BorrowedBooks: []BorrowResponse{}}
	for _, rec := range s.records {
		if !rec.Active() {
			continue
		}
		out.BorrowedBooks = append(out.BorrowedBooks, buildResponse(rec, s.bookTitle(ctx, rec.BookID)))
	}
	out.TotalBorrowed = len(out.BorrowedBooks)
	return out
}

func (s *Service) CheckAvailability(ctx context.Context, bookID int) (AvailabilityResponse, error) {
	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return AvailabilityResponse{}, ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}

	available := book.AvailableCopies > 0
	status := "Not Available"
	if available {
		status = "Available"
	}
	return AvailabilityResponse{
		BookID:          book.ID,
		BookTitle:       book.Title,
		Author:          book.Author,
		AvailableCopies: book.AvailableCopies,
		IsAvailable:     available,
		Status:          status,
	}, nil
}

// HasActiveForBook はカタログの削除ガード用。
func (s *Service) HasActiveForBook(bookID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.active {
		if key.bookID == bookID {
			return true
		}
	}
	return false
}

// HasActiveForUser はディレクトリの削除ガード用。
func (s *Service) HasActiveForUser(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.active {
		if key.userID == userID {
			return true
		}
	}
	return false
}

// Records はレポート用に台帳のコピーを返す。
func (s *Service) Records(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Now は台帳の時計を公開する（期限超過の判定を揃えるため）。
func (s *Service) Now() time.Time { return s.clock.Now() }

// ---------- helpers ----------

func (s *Service) resolveReturnTarget(req ReturnRequest) (int, error) {
	if req.BorrowID != nil {
		pos, ok := s.index[*req.BorrowID]
		if !ok {
			return 0, ErrNotFound(fmt.Sprintf("borrow record %d not found", *req.BorrowID))
		}
		return pos, nil
	}
	if req.UserID != nil && req.BookID != nil {
		pos, ok := s.active[pairKey{*req.UserID, *req.BookID}]
		if !ok {
			return 0, ErrNotFound(fmt.Sprintf("no active borrow of book %d by user %d", *req.BookID, *req.UserID))
		}
		return pos, nil
	}
	return 0, ErrInvalid("either borrow_id or (user_id, book_id) is required")
}

// 直前に追加したレコードをミラーから取り除く（呼び出し側が mu を保持）
func (s *Service) dropLast(rec Record) {
	s.records = s.records[:len(s.records)-1]
	delete(s.index, rec.BorrowID)
	delete(s.active, pairKey{rec.UserID, rec.BookID})
	s.nextID--
}

func (s *Service) denied(reason string) {
	if s.metrics != nil {
		s.metrics.RecordBorrowDenied(reason)
	}
}

func (s *Service) bookTitle(ctx context.Context, bookID int) string {
	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return "Unknown"
	}
	return book.Title
}

func buildResponse(rec Record, title string) BorrowResponse {
	resp := BorrowResponse{
		BorrowID:   rec.BorrowID,
		UserID:     rec.UserID,
		BookID:     rec.BookID,
		BookTitle:  title,
		BorrowDate: rec.BorrowDate.Format(DateLayout),
		DueDate:    rec.DueDate.Format(DateLayout),
		Status:     string(rec.Status),
	}
	if rec.ReturnDate != nil {
		rd := rec.ReturnDate.Format(DateLayout)
		resp.ReturnDate = &rd
	}
	return resp
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
