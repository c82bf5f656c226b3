package books

// ===== Requests =====

type CreateBookRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn" binding:"required"`
	PublishedYear   int    `json:"published_year" binding:"required"`
	AvailableCopies int    `json:"available_copies"`
}

// 部分更新。ポインタで「未指定」と「ゼロ値の明示」を区別する
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublishedYear   *int    `json:"published_year,omitempty"`
	AvailableCopies *int    `json:"available_copies,omitempty"`
}

// ===== Responses =====

type BookResponse struct {
	BookID          int    `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublishedYear   int    `json:"published_year"`
	AvailableCopies int    `json:"available_copies"`
}

func toResponse(b Book) BookResponse {
	return BookResponse{
		BookID:          b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublishedYear:   b.PublishedYear,
		AvailableCopies: b.AvailableCopies,
	}
}
