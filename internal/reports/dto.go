package reports

import (
	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/users"
)

type OverdueEntry struct {
	BorrowID    int    `json:"borrow_id"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	BookID      int    `json:"book_id"`
	BookTitle   string `json:"book_title"`
	BorrowDate  string `json:"borrow_date"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue"`
}

type OverdueReport struct {
	TotalOverdue int            `json:"total_overdue"`
	Overdue      []OverdueEntry `json:"overdue"`
}

type MostBorrowedEntry struct {
	BookID      int    `json:"book_id"`
	BookTitle   string `json:"book_title"`
	Author      string `json:"author"`
	BorrowCount int    `json:"borrow_count"`
}

type MostBorrowedReport struct {
	MostBorrowed []MostBorrowedEntry `json:"most_borrowed"`
}

type HistoryEntry struct {
	BorrowID   int     `json:"borrow_id"`
	UserID     int     `json:"user_id"`
	Username   string  `json:"username"`
	BookID     int     `json:"book_id"`
	BookTitle  string  `json:"book_title"`
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date,omitempty"`
	Status     string  `json:"status"`
}

type HistoryReport struct {
	TotalRecords int            `json:"total_records"`
	History      []HistoryEntry `json:"history"`
}

type Summary struct {
	TotalBooks           int `json:"total_books"`
	TotalUsers           int `json:"total_users"`
	TotalBorrows         int `json:"total_borrows"`
	ActiveBorrows        int `json:"active_borrows"`
	ReturnedBorrows      int `json:"returned_borrows"`
	TotalCopiesAvailable int `json:"total_copies_available"`
}

// 管理者向けの全体レポート
type FullReport struct {
	Summary Summary               `json:"summary"`
	Books   []books.BookResponse  `json:"books"`
	Users   []users.UserResponse  `json:"users"`
	Borrows []HistoryEntry        `json:"borrows"`
}
