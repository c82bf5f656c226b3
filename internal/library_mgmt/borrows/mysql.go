package borrows

import (
	"context"
	"database/sql"

	"LMS-backend/internal/platform/db"
)

// MySQLStore は Store のMySQL実装（全件置き換え契約）。
type MySQLStore struct {
	conn *sql.DB
}

func NewMySQLStore(conn *sql.DB) *MySQLStore { return &MySQLStore{conn: conn} }

func (s *MySQLStore) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT borrow_id, user_id, book_id, borrow_date, due_date, return_date, status
	FROM borrows ORDER BY borrow_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Record
	for rows.Next() {
		var rec Record
		var returnDate sql.NullTime
		var status string
		if err := rows.Scan(&rec.BorrowID, &rec.UserID, &rec.BookID, &rec.BorrowDate, &rec.DueDate, &returnDate, &status); err != nil {
			return nil, err
		}
		if returnDate.Valid {
			rd := returnDate.Time
			rec.ReturnDate = &rd
		}
		rec.Status = Status(status)
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *MySQLStore) SaveAll(ctx context.Context, items []Record) error {
	return db.RunInTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM borrows`); err != nil {
			return err
		}
		for _, rec := range items {
			var returnDate any
			if rec.ReturnDate != nil {
				returnDate = rec.ReturnDate.Format(DateLayout)
			}
			_, err := tx.ExecContext(ctx, `
			INSERT INTO borrows (borrow_id, user_id, book_id, borrow_date, due_date, return_date, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
				rec.BorrowID, rec.UserID, rec.BookID,
				rec.BorrowDate.Format(DateLayout), rec.DueDate.Format(DateLayout),
				returnDate, string(rec.Status))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
