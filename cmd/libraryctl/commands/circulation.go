package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"LMS-backend/cmd/libraryctl/output"
	"LMS-backend/internal/library_mgmt/borrows"
)

var (
	returnBorrowID int
	returnUserID   int
	returnBookID   int
)

var borrowCmd = &cobra.Command{
	Use:   "borrow <user_id> <book_id>",
	Short: "蔵書を貸し出す",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("user_id は整数で指定する: %q", args[0])
		}
		bookID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("book_id は整数で指定する: %q", args[1])
		}

		ctx, cancel := newContext()
		defer cancel()

		res, err := newClient().Borrow(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		output.Success("貸出 %d: %s（返却期限 %s）", res.BorrowID, res.BookTitle, res.DueDate)
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return",
	Short: "蔵書を返却する",
	Long: `貸出IDか、(利用者ID, 蔵書ID) の組で返却する。

Examples:
  libraryctl return --borrow-id 3
  libraryctl return --user 1 --book 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()
		c := newClient()

		var res borrows.BorrowResponse
		var err error
		switch {
		case cmd.Flags().Changed("borrow-id"):
			res, err = c.ReturnByID(ctx, returnBorrowID)
		case cmd.Flags().Changed("user") && cmd.Flags().Changed("book"):
			res, err = c.ReturnByPair(ctx, returnUserID, returnBookID)
		default:
			return fmt.Errorf("--borrow-id か --user と --book の組を指定する")
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		output.Success("貸出 %d を返却した: %s", res.BorrowID, res.BookTitle)
		return nil
	},
}

var borrowedCmd = &cobra.Command{
	Use:   "borrowed",
	Short: "貸出中の一覧を表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		res, err := newClient().ListBorrowed(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}

		output.Section("貸出中")
		printBorrowTable(res.BorrowedBooks)
		output.Muted("%d 件", res.TotalBorrowed)
		return nil
	},
}

var trackCmd = &cobra.Command{
	Use:   "track <user_id>",
	Short: "利用者の貸出履歴を表示する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("user_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		res, err := newClient().TrackUser(ctx, userID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}

		output.Section(fmt.Sprintf("利用者 %d の貸出履歴", res.UserID))
		printBorrowTable(res.Borrows)
		output.Muted("%d 件", res.TotalBorrows)
		return nil
	},
}

var availabilityCmd = &cobra.Command{
	Use:   "availability <book_id>",
	Short: "蔵書の在庫状況を表示する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("book_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		res, err := newClient().CheckAvailability(ctx, bookID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}

		fmt.Printf("%s %s / %s: 在庫 %d (%s)\n",
			output.StatusIcon(res.Status), res.BookTitle, res.Author, res.AvailableCopies, res.Status)
		return nil
	},
}

func printBorrowTable(list []borrows.BorrowResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tBOOK\tTITLE\tBORROWED\tDUE\tRETURNED\tSTATUS")
	for _, b := range list {
		returned := "-"
		if b.ReturnDate != nil {
			returned = *b.ReturnDate
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s %s\n",
			b.BorrowID, b.UserID, b.BookID, b.BookTitle,
			b.BorrowDate, b.DueDate, returned, output.StatusIcon(b.Status), b.Status)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(borrowCmd, returnCmd, borrowedCmd, trackCmd, availabilityCmd)

	returnCmd.Flags().IntVar(&returnBorrowID, "borrow-id", 0, "貸出ID")
	returnCmd.Flags().IntVar(&returnUserID, "user", 0, "利用者ID")
	returnCmd.Flags().IntVar(&returnBookID, "book", 0, "蔵書ID")
}
