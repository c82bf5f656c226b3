package users

// User は users ストアの1レコードを表す
type User struct {
	ID       int
	Username string
	FullName string
	Email    string
}
