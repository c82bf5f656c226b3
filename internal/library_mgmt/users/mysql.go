package users

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

func (s *MySQLStore) LoadAll(ctx context.Context) ([]User, error) {
	rows, err := s.conn.QueryContext(ctx, `
	SELECT user_id, username, full_name, email
	FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (s *MySQLStore) SaveAll(ctx context.Context, items []User) error {
	return db.RunInTx(ctx, s.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
			return err
		}
		for _, u := range items {
			_, err := tx.ExecContext(ctx, `
			INSERT INTO users (user_id, username, full_name, email)
			VALUES (?, ?, ?, ?)`,
				u.ID, u.Username, u.FullName, u.Email)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
