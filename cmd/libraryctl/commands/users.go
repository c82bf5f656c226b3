package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"LMS-backend/cmd/libraryctl/output"
	"LMS-backend/internal/library_mgmt/users"
)

var (
	userName     string
	userFullName string
	userEmail    string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "利用者の管理",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "利用者の一覧を表示する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		list, err := newClient().ListUsers(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(list)
		}

		output.Section("利用者一覧")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tFULL NAME\tEMAIL")
		for _, u := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.UserID, u.Username, u.FullName, u.Email)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		output.Muted("%d 名", len(list))
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <user_id>",
	Short: "利用者の詳細を表示する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("user_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		u, err := newClient().GetUser(ctx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(u)
		}
		printUser(u)
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "利用者を登録する",
	Example: `  libraryctl users add --username alice --full-name "Alice Example" --email alice@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := newContext()
		defer cancel()

		u, err := newClient().CreateUser(ctx, users.CreateUserRequest{
			Username: userName,
			FullName: userFullName,
			Email:    userEmail,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(u)
		}
		output.Success("利用者 %d を登録した", u.UserID)
		printUser(u)
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <user_id>",
	Short: "利用者を更新する（指定したフィールドのみ）",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("user_id は整数で指定する: %q", args[0])
		}

		var req users.UpdateUserRequest
		if cmd.Flags().Changed("username") {
			req.Username = &userName
		}
		if cmd.Flags().Changed("full-name") {
			req.FullName = &userFullName
		}
		if cmd.Flags().Changed("email") {
			req.Email = &userEmail
		}

		ctx, cancel := newContext()
		defer cancel()

		u, err := newClient().UpdateUser(ctx, id, req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(u)
		}
		output.Success("利用者 %d を更新した", u.UserID)
		printUser(u)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user_id>",
	Short: "利用者を削除する",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("user_id は整数で指定する: %q", args[0])
		}
		ctx, cancel := newContext()
		defer cancel()

		if err := newClient().DeleteUser(ctx, id); err != nil {
			return err
		}
		output.Success("利用者 %d を削除した", id)
		return nil
	},
}

func printUser(u users.UserResponse) {
	output.Section(fmt.Sprintf("利用者 #%d", u.UserID))
	fmt.Printf("  Username:  %s\n", u.Username)
	fmt.Printf("  Full Name: %s\n", u.FullName)
	fmt.Printf("  Email:     %s\n", u.Email)
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersAddCmd, usersUpdateCmd, usersDeleteCmd)

	for _, c := range []*cobra.Command{usersAddCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userName, "username", "", "利用者名")
		c.Flags().StringVar(&userFullName, "full-name", "", "氏名")
		c.Flags().StringVar(&userEmail, "email", "", "メールアドレス")
	}
	for _, name := range []string{"username", "full-name", "email"} {
		_ = usersAddCmd.MarkFlagRequired(name)
	}
}
