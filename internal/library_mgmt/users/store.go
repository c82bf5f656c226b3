package users

import (
	"context"
	"strconv"

	"LMS-backend/internal/platform/flatfile"
)

// 1行のフィールド数: id|username|full_name|email
const fieldCount = 4

// Store は users ストアの読み書き契約。
type Store interface {
	LoadAll(ctx context.Context) ([]User, error)
	SaveAll(ctx context.Context, items []User) error
}

// ===== フラットファイル実装 =====

type FileStore struct {
	table *flatfile.Table
}

func NewFileStore(path string) *FileStore {
	return &FileStore{table: flatfile.NewTable(path, fieldCount)}
}

func (s *FileStore) LoadAll(ctx context.Context) ([]User, error) {
	rows, err := s.table.Load()
	if err != nil {
		return nil, err
	}

	var items []User
	for _, parts := range rows {
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		items = append(items, User{
			ID:       id,
			Username: parts[1],
			FullName: parts[2],
			Email:    parts[3],
		})
	}
	return items, nil
}

func (s *FileStore) SaveAll(ctx context.Context, items []User) error {
	rows := make([]string, 0, len(items))
	for _, u := range items {
		rows = append(rows, flatfile.Join(strconv.Itoa(u.ID), u.Username, u.FullName, u.Email))
	}
	return s.table.Save(rows)
}
