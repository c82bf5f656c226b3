package books

import (
	"context"
	"database/sql"

	"LMS-backend/internal/platform/db"
)

// MySQLStore は Store のMySQL実装。
// フラットファイル版と同じ全件置き換え契約（DELETE + 一括INSERT）を守る。
type MySQLStore struct {
	conn *sql.DB
}

func NewMySQLStore(conn *sql.DB) *MySQLStore { return &MySQLStore{conn: conn} }

func (s *MySQLStore) LoadAll(ctx context.Context) ([]Book, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT book_id, title, author, isbn, published_year, available_copies
	FROM books ORDER BY book_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedYear, &b.AvailableCopies); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (s *MySQLStore) SaveAll(ctx context.Context, items []Book) error {
	return db.RunInTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM books`); err != nil {
			return err
		}
		for _, b := range items {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO books (book_id, title, author, isbn, published_year, available_copies)
			VALUES (?, ?, ?, ?, ?, ?)`,
				b.ID, b.Title, b.Author, b.ISBN, b.PublishedYear, b.AvailableCopies)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
