package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"LMS-backend/cmd/libraryctl/output"
)

var (
	mostBorrowedLimit int
	historyUserID     int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "各種レポートの取得",
}

var reportsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "全体サマリを表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		full, err := newClient().FullReport(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(full)
		}

		s := full.Summary
		output.Section("サマリ")
		fmt.Printf("  蔵書:     %d 冊（在庫合計 %d）\n", s.TotalBooks, s.TotalCopiesAvailable)
		fmt.Printf("  利用者:   %d 名\n", s.TotalUsers)
		fmt.Printf("  貸出累計: %d 件（貸出中 %d / 返却済 %d）\n", s.TotalBorrows, s.ActiveBorrows, s.ReturnedBorrows)
		return nil
	},
}

var reportsOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "期限超過の貸出を表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		rep, err := newClient().OverdueReport(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rep)
		}

		output.Section("期限超過")
		if rep.TotalOverdue == 0 {
			output.Success("期限超過なし")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tTITLE\tDUE\tDAYS OVERDUE")
		for _, e := range rep.Overdue {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", e.BorrowID, e.Username, e.BookTitle, e.DueDate, e.DaysOverdue)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		output.Warning("%d 件が期限超過", rep.TotalOverdue)
		return nil
	},
}

var reportsMostBorrowedCmd = &cobra.Command{
	Use:   "most-borrowed",
	Short: "貸出回数の多い蔵書を表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		rep, err := newClient().MostBorrowedReport(ctx, mostBorrowedLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rep)
		}

		output.Section("貸出ランキング")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tBOOK\tTITLE\tAUTHOR\tCOUNT")
		for i, e := range rep.MostBorrowed {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n", i+1, e.BookID, e.BookTitle, e.Author, e.BorrowCount)
		}
		return w.Flush()
	},
}

var reportsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "貸出履歴を表示する（--user で絞り込み）",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		var userID *int
		if cmd.Flags().Changed("user") {
			userID = &historyUserID
		}
		rep, err := newClient().HistoryReport(ctx, userID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rep)
		}

		output.Section("貸出履歴")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSER\tTITLE\tBORROWED\tDUE\tRETURNED\tSTATUS")
		for _, e := range rep.History {
			returned := "-"
			if e.ReturnDate != nil {
				returned = *e.ReturnDate
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s %s\n",
				e.BorrowID, e.Username, e.BookTitle, e.BorrowDate, e.DueDate, returned,
				output.StatusIcon(e.Status), e.Status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		output.Muted("%d 件", rep.TotalRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsSummaryCmd, reportsOverdueCmd, reportsMostBorrowedCmd, reportsHistoryCmd)

	reportsMostBorrowedCmd.Flags().IntVar(&mostBorrowedLimit, "limit", 10, "表示件数の上限")
	reportsHistoryCmd.Flags().IntVar(&historyUserID, "user", 0, "利用者IDで絞り込む")
}
