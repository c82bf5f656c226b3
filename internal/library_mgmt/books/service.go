package books

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ===== Error model (users/borrows/reports と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
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

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
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

// ===== Service =====

// Service は蔵書カタログ。起動時にストアからミラーを再構築し、
// 変更のたびにストア全体を書き戻す。
type Service struct {
	mu     sync.Mutex
	store  Store
	items  []Book      // 登録順を保持
	index  map[int]int // book_id -> items の位置
	nextID int
	inUse  func(bookID int) bool // 貸出中チェック（起動時に台帳から注入）
}

func NewService(store Store) *Service {
	return &Service{store: store, index: make(map[int]int), nextID: 1}
}

// SetInUseCheck は削除ガードを差し込む。貸出台帳の初期化後に呼ぶこと。
func (s *Service) SetInUseCheck(fn func(bookID int) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = fn
}

// Load はストアからミラーを再構築する。next id は既存の最大値+1。
func (s *Service) Load(ctx context.Context) error {
	items, err := s.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.index = make(map[int]int, len(items))
	maxID := 0
	for i, b := range items {
		s.index[b.ID] = i
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	s.nextID = maxID + 1
	return nil
}

func (s *Service) List(ctx context.Context) []BookResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BookResponse, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, toResponse(b))
	}
	return out
}

func (s *Service) Get(ctx context.Context, bookID int) (BookResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[bookID]
	if !ok {
		return BookResponse{}, ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}
	return toResponse(s.items[i]), nil
}

// GetBook は台帳向けにモデルそのものを返す。
func (s *Service) GetBook(ctx context.Context, bookID int) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[bookID]
	if !ok {
		return Book{}, ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}
	return s.items[i], nil
}

func (s *Service) Create(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" || strings.TrimSpace(in.ISBN) == "" {
		return BookResponse{}, ErrInvalid("title, author, isbn are required")
	}
	if in.AvailableCopies < 0 {
		return BookResponse{}, ErrInvalid("available_copies must be >= 0")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.items {
		if b.ISBN == in.ISBN {
			return BookResponse{}, ErrConflict("book with this ISBN already exists")
		}
	}

	b := Book{
		ID:              s.nextID,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublishedYear:   in.PublishedYear,
		AvailableCopies: in.AvailableCopies,
	}
	s.items = append(s.items, b)
	s.index[b.ID] = len(s.items) - 1
	s.nextID++

	if err := s.persist(ctx); err != nil {
		// 書き戻し失敗時はミラーを巻き戻す
		s.items = s.items[:len(s.items)-1]
		delete(s.index, b.ID)
		s.nextID--
		return BookResponse{}, err
	}
	return toResponse(b), nil
}

func (s *Service) Update(ctx context.Context, bookID int, in UpdateBookRequest) (BookResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return BookResponse{}, ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}

	prev := s.items[i]
	b := prev

	// ポインタが nil のフィールドは据え置き。ゼロ値の明示は反映する
	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.ISBN != nil {
		for _, other := range s.items {
			if other.ID != bookID && other.ISBN == *in.ISBN {
				return BookResponse{}, ErrConflict("book with this ISBN already exists")
			}
		}
		b.ISBN = *in.ISBN
	}
	if in.PublishedYear != nil {
		b.PublishedYear = *in.PublishedYear
	}
	if in.AvailableCopies != nil {
		if *in.AvailableCopies < 0 {
			return BookResponse{}, ErrInvalid("available_copies must be >= 0")
		}
		b.AvailableCopies = *in.AvailableCopies
	}

	s.items[i] = b
	if err := s.persist(ctx); err != nil {
		s.items[i] = prev
		return BookResponse{}, err
	}
	return toResponse(b), nil
}

func (s *Service) Delete(ctx context.Context, bookID int) error {
	// 貸出中チェックは台帳側のロックを取るので、必ず自分のロックの外で呼ぶ
	// （ロック順は 台帳 → カタログ の一方向のみ）
	s.mu.Lock()
	guard := s.inUse
	s.mu.Unlock()
	if guard != nil && guard(bookID) {
		return ErrConflict("book has an active borrow")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}

	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()

	if err := s.persist(ctx); err != nil {
		s.items = append(s.items[:i], append([]Book{removed}, s.items[i:]...)...)
		s.reindex()
		return err
	}
	return nil
}

// AdjustCopies は在庫数を delta だけ増減して書き戻す。台帳専用。
func (s *Service) AdjustCopies(ctx context.Context, bookID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return ErrNotFound(fmt.Sprintf("book %d not found", bookID))
	}
	next := s.items[i].AvailableCopies + delta
	if next < 0 {
		return ErrConflict("available_copies must not go negative")
	}

	prev := s.items[i].AvailableCopies
	s.items[i].AvailableCopies = next
	if err := s.persist(ctx); err != nil {
		s.items[i].AvailableCopies = prev
		return err
	}
	return nil
}

// Snapshot はレポート用にミラーのコピーを返す。
func (s *Service) Snapshot(ctx context.Context) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Book, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) reindex() {
	s.index = make(map[int]int, len(s.items))
	for i, b := range s.items {
		s.index[b.ID] = i
	}
}

// 呼び出し側が mu を保持していること
func (s *Service) persist(ctx context.Context) error {
	return s.store.SaveAll(ctx, s.items)
}
