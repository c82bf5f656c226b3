package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ストレージバックエンドの種別
const (
	StorageFlatFile = "flatfile"
	StorageMySQL    = "mysql"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	Version     string          `yaml:"version"`
	Mode        string          `yaml:"mode"`
	Addr        string          `yaml:"addr"`
	Storage     string          `yaml:"storage"`
	DatabaseDir string          `yaml:"database_dir"`
	LoanDays    int             `yaml:"loan_days"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	DB          DatabaseConfig  `yaml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 省略された項目はデフォルト値で埋める
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Storage == "" {
		c.Storage = StorageFlatFile
	}
	if c.DatabaseDir == "" {
		c.DatabaseDir = "database"
	}
	if c.LoanDays == 0 {
		c.LoanDays = 14
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
}

func (c *Config) validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode は dev または release を指定してください: %q", c.Mode)
	}
	if c.Storage != StorageFlatFile && c.Storage != StorageMySQL {
		return fmt.Errorf("storage は flatfile または mysql を指定してください: %q", c.Storage)
	}
	if c.LoanDays < 0 {
		return fmt.Errorf("loan_days は正の値を指定してください: %d", c.LoanDays)
	}
	if c.Storage == StorageMySQL && c.DB.DBName == "" {
		return fmt.Errorf("storage=mysql の場合 database.dbname は必須です")
	}
	return nil
}
