// Package flatfile はパイプ区切りテキストファイルをレコードストアとして扱う。
// 読み込みは1行1レコード、書き込みはファイル全体の上書き。
package flatfile

import (
	"fmt"
	"os"
	"strings"
)

// フィールド区切り文字。データ中には現れない前提の予約文字。
const Separator = "|"

// Table は1エンティティ分のバックアップファイルを表す。
type Table struct {
	path      string
	minFields int
}

func NewTable(path string, minFields int) *Table {
	return &Table{path: path, minFields: minFields}
}

func (t *Table) Path() string { return t.path }

// Load はファイルを読み込み、フィールド分割済みのレコード列を返す。
// ファイルが無い場合は空とみなす。空行と minFields 未満の行はスキップする。
func (t *Table) Load() ([][]string, error) {
	buf, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s の読み込み失敗: %w", t.path, err)
	}

	var rows [][]string
	for _, line := range strings.Split(string(buf), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, Separator)
		if len(parts) < t.minFields {
			// 壊れた行は致命傷にせず読み飛ばす
			continue
		}
		rows = append(rows, parts)
	}
	return rows, nil
}

// Save はシリアライズ済みの行でファイル全体を上書きする。追記はしない。
func (t *Table) Save(rows []string) error {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row)
		if !strings.HasSuffix(row, "\n") {
			b.WriteString("\n")
		}
	}
	if err := os.WriteFile(t.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%s の書き込み失敗: %w", t.path, err)
	}
	return nil
}

// Join はフィールド列を1行に組み立てる。
func Join(fields ...string) string {
	return strings.Join(fields, Separator)
}
