// 図書管理APIのHTTPクライアント。CLIと結合テストから利用する
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/borrows"
	"LMS-backend/internal/library_mgmt/users"
	"LMS-backend/internal/reports"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultTimeout = 5 * time.Second

// APIError はサーバの {code, message} エラーボディをそのまま保持する
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

// New はベースURL（例: http://127.0.0.1:8080/api/v1）を受け取る
func New(baseURL string) *Client {
	return &Client{
		baseURL: trimTrailingSlash(baseURL),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithHTTPClient はテスト用にトランスポートを差し替える
func NewWithHTTPClient(baseURL string, httpc *http.Client) *Client {
	return &Client{baseURL: trimTrailingSlash(baseURL), httpc: httpc}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// do はリクエストを一本化する。2xx以外は APIError に変換する
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = "INTERNAL"
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ---------- 蔵書 ----------

type booksBody struct {
	Books []books.BookResponse `json:"books"`
}

func (c *Client) CreateBook(ctx context.Context, req books.CreateBookRequest) (books.BookResponse, error) {
	var out books.BookResponse
	err := c.do(ctx, http.MethodPost, "/books", req, &out)
	return out, err
}

func (c *Client) ListBooks(ctx context.Context) ([]books.BookResponse, error) {
	var out booksBody
	err := c.do(ctx, http.MethodGet, "/books", nil, &out)
	return out.Books, err
}

func (c *Client) GetBook(ctx context.Context, bookID int) (books.BookResponse, error) {
	var out books.BookResponse
	err := c.do(ctx, http.MethodGet, "/books/"+strconv.Itoa(bookID), nil, &out)
	return out, err
}

func (c *Client) UpdateBook(ctx context.Context, bookID int, req books.UpdateBookRequest) (books.BookResponse, error) {
	var out books.BookResponse
	err := c.do(ctx, http.MethodPut, "/books/"+strconv.Itoa(bookID), req, &out)
	return out, err
}

func (c *Client) DeleteBook(ctx context.Context, bookID int) error {
	return c.do(ctx, http.MethodDelete, "/books/"+strconv.Itoa(bookID), nil, nil)
}

// ---------- 利用者 ----------

type usersBody struct {
	Users []users.UserResponse `json:"users"`
}

func (c *Client) CreateUser(ctx context.Context, req users.CreateUserRequest) (users.UserResponse, error) {
	var out users.UserResponse
	err := c.do(ctx, http.MethodPost, "/users", req, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]users.UserResponse, error) {
	var out usersBody
	err := c.do(ctx, http.MethodGet, "/users", nil, &out)
	return out.Users, err
}

func (c *Client) GetUser(ctx context.Context, userID int) (users.UserResponse, error) {
	var out users.UserResponse
	err := c.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(userID), nil, &out)
	return out, err
}

func (c *Client) UpdateUser(ctx context.Context, userID int, req users.UpdateUserRequest) (users.UserResponse, error) {
	var out users.UserResponse
	err := c.do(ctx, http.MethodPut, "/users/"+strconv.Itoa(userID), req, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, userID int) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.Itoa(userID), nil, nil)
}

// ---------- 貸出・返却 ----------

func (c *Client) Borrow(ctx context.Context, userID, bookID int) (borrows.BorrowResponse, error) {
	var out borrows.BorrowResponse
	err := c.do(ctx, http.MethodPost, "/borrows", borrows.BorrowRequest{UserID: userID, BookID: bookID}, &out)
	return out, err
}

// ReturnByID は貸出IDで返却する
func (c *Client) ReturnByID(ctx context.Context, borrowID int) (borrows.BorrowResponse, error) {
	var out borrows.BorrowResponse
	err := c.do(ctx, http.MethodPost, "/returns", borrows.ReturnRequest{BorrowID: &borrowID}, &out)
	return out, err
}

// ReturnByPair は (利用者, 蔵書) の組で返却する
func (c *Client) ReturnByPair(ctx context.Context, userID, bookID int) (borrows.BorrowResponse, error) {
	var out borrows.BorrowResponse
	err := c.do(ctx, http.MethodPost, "/returns", borrows.ReturnRequest{UserID: &userID, BookID: &bookID}, &out)
	return out, err
}

func (c *Client) ListBorrowed(ctx context.Context) (borrows.BorrowedBooksResponse, error) {
	var out borrows.BorrowedBooksResponse
	err := c.do(ctx, http.MethodGet, "/borrows", nil, &out)
	return out, err
}

func (c *Client) TrackUser(ctx context.Context, userID int) (borrows.TrackResponse, error) {
	var out borrows.TrackResponse
	err := c.do(ctx, http.MethodGet, "/borrows/user/"+strconv.Itoa(userID), nil, &out)
	return out, err
}

func (c *Client) CheckAvailability(ctx context.Context, bookID int) (borrows.AvailabilityResponse, error) {
	var out borrows.AvailabilityResponse
	err := c.do(ctx, http.MethodGet, "/books/"+strconv.Itoa(bookID)+"/availability", nil, &out)
	return out, err
}

// ---------- レポート ----------

func (c *Client) FullReport(ctx context.Context) (reports.FullReport, error) {
	var out reports.FullReport
	err := c.do(ctx, http.MethodGet, "/reports", nil, &out)
	return out, err
}

func (c *Client) OverdueReport(ctx context.Context) (reports.OverdueReport, error) {
	var out reports.OverdueReport
	err := c.do(ctx, http.MethodGet, "/reports/overdue", nil, &out)
	return out, err
}

func (c *Client) MostBorrowedReport(ctx context.Context, limit int) (reports.MostBorrowedReport, error) {
	path := "/reports/most-borrowed"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out reports.MostBorrowedReport
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) HistoryReport(ctx context.Context, userID *int) (reports.HistoryReport, error) {
	path := "/reports/history"
	if userID != nil {
		path += "?user_id=" + strconv.Itoa(*userID)
	}
	var out reports.HistoryReport
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
