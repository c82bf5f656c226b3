package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ===== Error model (books/borrows/reports と同型) =====
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

// Service は利用者ディレクトリ。蔵書カタログと同じミラー構成。
type Service struct {
	mu     sync.Mutex
	store  Store
	items  []User
	index  map[int]int
	nextID int
	inUse  func(userID int) bool // 貸出中チェック（起動時に台帳から注入）
}

func NewService(store Store) *Service {
	return &Service{store: store, index: make(map[int]int), nextID: 1}
}

func (s *Service) SetInUseCheck(fn func(userID int) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = fn
}

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
	for i, u := range items {
		s.index[u.ID] = i
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	s.nextID = maxID + 1
	return nil
}

func (s *Service) List(ctx context.Context) []UserResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UserResponse, 0, len(s.items))
	for _, u := range s.items {
		out = append(out, toResponse(u))
	}
	return out
}

func (s *Service) Get(ctx context.Context, userID int) (UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[userID]
	if !ok {
		return UserResponse{}, ErrNotFound(fmt.Sprintf("user %d not found", userID))
	}
	return toResponse(s.items[i]), nil
}

// Exists は台帳の前提チェック用。
func (s *Service) Exists(ctx context.Context, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[userID]
	return ok
}

func (s *Service) Create(ctx context.Context, in CreateUserRequest) (UserResponse, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" {
		return UserResponse{}, ErrInvalid("username, full_name, email are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.items {
		if u.Username == in.Username {
			return UserResponse{}, ErrConflict("username already exists")
		}
	}

	u := User{
		ID:       s.nextID,
		Username: in.Username,
		FullName: in.FullName,
		Email:    in.Email,
	}
	s.items = append(s.items, u)
	s.index[u.ID] = len(s.items) - 1
	s.nextID++

	if err := s.persist(ctx); err != nil {
		s.items = s.items[:len(s.items)-1]
		delete(s.index, u.ID)
		s.nextID--
		return UserResponse{}, err
	}
	return toResponse(u), nil
}

func (s *Service) Update(ctx context.Context, userID int, in UpdateUserRequest) (UserResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[userID]
	if !ok {
		return UserResponse{}, ErrNotFound(fmt.Sprintf("user %d not found", userID))
	}

	prev := s.items[i]
	u := prev

	if in.Username != nil {
		for _, other := range s.items {
			if other.ID != userID && other.Username == *in.Username {
				return UserResponse{}, ErrConflict("username already exists")
			}
		}
		u.Username = *in.Username
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.Email != nil {
		u.Email = *in.Email
	}

	s.items[i] = u
	if err := s.persist(ctx); err != nil {
		s.items[i] = prev
		return UserResponse{}, err
	}
	return toResponse(u), nil
}

func (s *Service) Delete(ctx context.Context, userID int) error {
	// 貸出中チェックは台帳側のロックを取るので、必ず自分のロックの外で呼ぶ
	// （ロック順は 台帳 → ディレクトリ の一方向のみ）
	s.mu.Lock()
	guard := s.inUse
	s.mu.Unlock()
	if guard != nil && guard(userID) {
		return ErrConflict("user has an active borrow")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[userID]
	if !ok {
		return ErrNotFound(fmt.Sprintf("user %d not found", userID))
	}

	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()

	if err := s.persist(ctx); err != nil {
		s.items = append(s.items[:i], append([]User{removed}, s.items[i:]...)...)
		s.reindex()
		return err
	}
	return nil
}

// Snapshot はレポート用にミラーのコピーを返す。
func (s *Service) Snapshot(ctx context.Context) []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) reindex() {
	s.index = make(map[int]int, len(s.items))
	for i, u := range s.items {
		s.index[u.ID] = i
	}
}

// 呼び出し側が mu を保持していること
func (s *Service) persist(ctx context.Context) error {
	return s.store.SaveAll(ctx, s.items)
}
