// 端末出力のスタイル定義
package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

func Success(format string, args ...any) {
	fmt.Print(successStyle.Render("✓ "))
	fmt.Printf(format+"\n", args...)
}

func Warning(format string, args ...any) {
	fmt.Print(warningStyle.Render("⚠ "))
	fmt.Printf(format+"\n", args...)
}

func Error(format string, args ...any) {
	fmt.Print(errorStyle.Render("✗ "))
	fmt.Printf(format+"\n", args...)
}

func Info(format string, args ...any) {
	fmt.Print(infoStyle.Render("ℹ "))
	fmt.Printf(format+"\n", args...)
}

func Muted(format string, args ...any) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func Primary(format string, args ...any) {
	fmt.Println(primaryStyle.Render(fmt.Sprintf(format, args...)))
}

// Section は見出しを区切り線付きで出す
func Section(title string) {
	fmt.Println()
	fmt.Println(primaryStyle.Render(title))
	line := make([]rune, 0, len(title))
	for range title {
		line = append(line, '─')
	}
	fmt.Println(mutedStyle.Render(string(line)))
}

// StatusIcon は貸出状態に応じたアイコンを返す
func StatusIcon(status string) string {
	switch status {
	case "returned", "available":
		return successStyle.Render("✓")
	case "borrowed":
		return infoStyle.Render("◉")
	case "unavailable", "overdue":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}
