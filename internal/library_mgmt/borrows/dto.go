package borrows

// 貸出リクエスト
type BorrowRequest struct {
	UserID int `json:"user_id" binding:"required"`
	BookID int `json:"book_id" binding:"required"`
}

// 返却リクエスト。borrow_id 指定が正、(user_id, book_id) 指定が従
type ReturnRequest struct {
	BorrowID *int `json:"borrow_id,omitempty"`
	UserID   *int `json:"user_id,omitempty"`
	BookID   *int `json:"book_id,omitempty"`
}

// 貸出レスポンス。表示用に書名を付与して返す
type BorrowResponse struct {
	BorrowID   int     `json:"borrow_id"`
	UserID     int     `json:"user_id"`
	BookID     int     `json:"book_id"`
	BookTitle  string  `json:"book_title"`
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date,omitempty"`
	Status     string  `json:"status"`
}

type TrackResponse struct {
	UserID       int              `json:"user_id"`
	TotalBorrows int              `json:"total_borrows"`
	Borrows      []BorrowResponse `json:"borrows"`
}

type BorrowedBooksResponse struct {
	TotalBorrowed int              `json:"total_borrowed"`
	BorrowedBooks []BorrowResponse `json:"borrowed_books"`
}

type AvailabilityResponse struct {
	BookID          int    `json:"book_id"`
	BookTitle       string `json:"book_title"`
	Author          string `json:"author"`
	AvailableCopies int    `json:"available_copies"`
	IsAvailable     bool   `json:"is_available"`
	Status          string `json:"status"`
}
