package borrows

import "time"

const DateLayout = "2006-01-02"

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
)

// Record は borrows ストアの1レコードを表す。
// 貸出時に作成され、返却時に一度だけ更新される。削除はしない。
type Record struct {
	BorrowID   int
	UserID     int
	BookID     int
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time // 未返却なら nil
	Status     Status
}

func (r Record) Active() bool { return r.Status == StatusBorrowed }
