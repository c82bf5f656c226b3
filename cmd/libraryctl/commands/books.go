package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"LMS-backend/cmd/libraryctl/output"
	"LMS-backend/internal/library_mgmt/books"
)

var (
	bookTitle  string
	bookAuthor string
	bookISBN   string
	bookYear   int
	bookCopies int
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "蔵書の管理",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "蔵書の一覧を表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		list, err := newClient().ListBooks(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(list)
		}

		output.Section("蔵書一覧")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tISBN\tYEAR\tCOPIES")
		for _, b := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
				b.BookID, b.Title, b.Author, b.ISBN, b.PublishedYear, b.AvailableCopies)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		output.Muted("%d 冊", len(list))
		return nil
	},
}

var booksGetCmd = &cobra.Command{
	Use:   "get <book_id>",
	Short: "蔵書の詳細を表示する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		b, err := newClient().GetBook(ctx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(b)
		}
		printBook(b)
		return nil
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "蔵書を登録する",
	Example: `  libraryctl books add --title "Go入門" --author "山田太郎" --isbn 978-4-0000-0000-1 --year 2021 --copies 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		b, err := newClient().CreateBook(ctx, books.CreateBookRequest{
			Title:           bookTitle,
			Author:          bookAuthor,
			ISBN:            bookISBN,
			PublishedYear:   bookYear,
			AvailableCopies: bookCopies,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(b)
		}
		output.Success("蔵書 %d を登録した", b.BookID)
		printBook(b)
		return nil
	},
}

var booksUpdateCmd = &cobra.Command{
	Use:   "update <book_id>",
	Short: "蔵書を更新する（指定したフィールドのみ）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book_id は整数で指定する: %q", args[0])
		}

		// フラグが明示されたフィールドだけを部分更新に載せる
		var req books.UpdateBookRequest
		if cmd.Flags().Changed("title") {
			req.Title = &bookTitle
		}
		if cmd.Flags().Changed("author") {
			req.Author = &bookAuthor
		}
		if cmd.Flags().Changed("isbn") {
			req.ISBN = &bookISBN
		}
		if cmd.Flags().Changed("year") {
			req.PublishedYear = &bookYear
		}
		if cmd.Flags().Changed("copies") {
			req.AvailableCopies = &bookCopies
		}

		ctx, cancel := newContext()
		defer cancel()

		b, err := newClient().UpdateBook(ctx, id, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(b)
		}
		output.Success("蔵書 %d を更新した", b.BookID)
		printBook(b)
		return nil
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <book_id>",
	Short: "蔵書を削除する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		if err := newClient().DeleteBook(ctx, id); err != nil {
			return err
		}
		output.Success("蔵書 %d を削除した", id)
		return nil
	},
}

func printBook(b books.BookResponse) {
	output.Section(fmt.Sprintf("蔵書 #%d", b.BookID))
	fmt.Printf("  Title:  %s\n", b.Title)
	fmt.Printf("  Author: %s\n", b.Author)
	fmt.Printf("  ISBN:   %s\n", b.ISBN)
	fmt.Printf("  Year:   %d\n", b.PublishedYear)
	fmt.Printf("  Copies: %d\n", b.AvailableCopies)
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksListCmd, booksGetCmd, booksAddCmd, booksUpdateCmd, booksDeleteCmd)

	for _, c := range []*cobra.Command{booksAddCmd, booksUpdateCmd} {
		c.Flags().StringVar(&bookTitle, "title", "", "書名")
		c.Flags().StringVar(&bookAuthor, "author", "", "著者")
		c.Flags().StringVar(&bookISBN, "isbn", "", "ISBN")
		c.Flags().IntVar(&bookYear, "year", 0, "出版年")
		c.Flags().IntVar(&bookCopies, "copies", 0, "在庫数")
	}
	for _, name := range []string{"title", "author", "isbn", "year"} {
		_ = booksAddCmd.MarkFlagRequired(name)
	}
}
