package borrows

import (
	"context"
	"strconv"
	"time"

	"LMS-backend/internal/platform/flatfile"
)

// 1行のフィールド数:
// borrow_id|user_id|book_id|borrow_date|due_date|return_date|status
// return_date は未返却のあいだ空欄。
const fieldCount = 7

// Store は borrows ストアの読み書き契約。
type Store interface {
	LoadAll(ctx context.Context) ([]Record, error)
	SaveAll(ctx context.Context, items []Record) error
}

// ===== フラットファイル実装 =====

type FileStore struct {
	table *flatfile.Table
}

func NewFileStore(path string) *FileStore {
	return &FileStore{table: flatfile.NewTable(path, fieldCount)}
}

func (s *FileStore) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.table.Load()
	if err != nil {
		return nil, err
	}

	var items []Record
	for _, parts := range rows {
		rec, ok := parseRow(parts)
		if !ok {
			continue
		}
		items = append(items, rec)
	}
	return items, nil
}

func (s *FileStore) SaveAll(ctx context.Context, items []Record) error {
	rows := make([]string, 0, len(items))
	for _, rec := range items {
		rows = append(rows, encodeRow(rec))
	}
	return s.table.Save(rows)
}

func parseRow(parts []string) (Record, bool) {
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Record{}, false
	}
	userID, err := strconv.Atoi(parts[1])
	if err != nil {
		return Record{}, false
	}
	bookID, err := strconv.Atoi(parts[2])
	if err != nil {
		return Record{}, false
	}
	borrowDate, err := time.Parse(DateLayout, parts[3])
	if err != nil {
		return Record{}, false
	}
	dueDate, err := time.Parse(DateLayout, parts[4])
	if err != nil {
		return Record{}, false
	}

	rec := Record{
		BorrowID:   id,
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
		Status:     Status(parts[6]),
	}
	if parts[5] != "" {
		rd, err := time.Parse(DateLayout, parts[5])
		if err != nil {
			return Record{}, false
		}
		rec.ReturnDate = &rd
	}
	return rec, true
}

func encodeRow(rec Record) string {
	returnDate := ""
	if rec.ReturnDate != nil {
		returnDate = rec.ReturnDate.Format(DateLayout)
	}
	return flatfile.Join(
		strconv.Itoa(rec.BorrowID),
		strconv.Itoa(rec.UserID),
		strconv.Itoa(rec.BookID),
		rec.BorrowDate.Format(DateLayout),
		rec.DueDate.Format(DateLayout),
		returnDate,
		string(rec.Status),
	)
}
