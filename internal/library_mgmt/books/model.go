package books

// Book は books ストアの1レコードを表す
type Book struct {
	ID              int
	Title           string
	Author          string
	ISBN            string
	PublishedYear   int
	AvailableCopies int
}
