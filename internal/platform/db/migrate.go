package db

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"LMS-backend/internal/platform/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(c config.DatabaseConfig) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("マイグレーションソースの生成失敗: %w", err)
	}

	url := fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("マイグレータの生成失敗: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("マイグレーションの適用失敗: %w", err)
	}
	return nil
}
