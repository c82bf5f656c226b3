package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"LMS-backend/internal/client"
)

var (
	serverURL  string
	timeout    time.Duration
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "libraryctl",
	Short: "図書管理APIの操作ツール",
	Long: `libraryctl は図書管理サーバのREST APIを端末から操作するツール。

蔵書・利用者の登録や検索、貸出・返却、各種レポートの取得ができる。
接続先は --server で指定する（既定: http://127.0.0.1:8080/api/v1）。`,
	Version: "1.0.0",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8080/api/v1", "APIサーバのベースURL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "リクエストのタイムアウト")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "JSON形式で出力する")
}

func newClient() *client.Client {
	return client.New(serverURL)
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// printJSON は --json 指定時の共通出力
func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
