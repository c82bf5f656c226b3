package books

import (
	"context"
	"strconv"

	"LMS-backend/internal/platform/flatfile"
)

// 1行のフィールド数: id|title|author|isbn|published_year|available_copies
const fieldCount = 6

// Store は books ストアの読み書き契約。
// LoadAll は登録順のレコード列、SaveAll はストア全体の置き換え。
type Store interface {
	LoadAll(ctx context.Context) ([]Book, error)
	SaveAll(ctx context.Context, items []Book) error
}

// ===== フラットファイル実装 =====

type FileStore struct {
	table *flatfile.Table
}

func NewFileStore(path string) *FileStore {
	return &FileStore{table: flatfile.NewTable(path, fieldCount)}
}

func (s *FileStore) LoadAll(ctx context.Context) ([]Book, error) {
	rows, err := s.table.Load()
	if err != nil {
		return nil, err
	}

	var items []Book
	for _, parts := range rows {
		b, ok := parseRow(parts)
		if !ok {
			continue
		}
		items = append(items, b)
	}
	return items, nil
}

func (s *FileStore) SaveAll(ctx context.Context, items []Book) error {
	rows := make([]string, 0, len(items))
	for _, b := range items {
		rows = append(rows, encodeRow(b))
	}
	return s.table.Save(rows)
}

// 数値フィールドが壊れている行は読み飛ばす（フィールド不足と同じ扱い）
func parseRow(parts []string) (Book, bool) {
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return Book{}, false
	}
	year, err := strconv.Atoi(parts[4])
	if err != nil {
		return Book{}, false
	}
	copies, err := strconv.Atoi(parts[5])
	if err != nil {
		return Book{}, false
	}
	return Book{
		ID:              id,
		Title:           parts[1],
		Author:          parts[2],
		ISBN:            parts[3],
		PublishedYear:   year,
		AvailableCopies: copies,
	}, true
}

func encodeRow(b Book) string {
	return flatfile.Join(
		strconv.Itoa(b.ID),
		b.Title,
		b.Author,
		b.ISBN,
		strconv.Itoa(b.PublishedYear),
		strconv.Itoa(b.AvailableCopies),
	)
}
