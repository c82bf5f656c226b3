package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/time/rate"

	"LMS-backend/internal/library_mgmt/books"
	"LMS-backend/internal/library_mgmt/borrows"
	"LMS-backend/internal/library_mgmt/users"
	"LMS-backend/internal/platform/config"
	"LMS-backend/internal/platform/db"
	"LMS-backend/internal/platform/metrics"
	"LMS-backend/internal/platform/middleware"
	"LMS-backend/internal/reports"
)

func main() {
	// 設定読み込み
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}
	log.Printf("[INFO] mode:%s storage:%s\n", cfg.Mode, cfg.Storage)

	// ストレージバックエンドの選択
	var (
		bookStore   books.Store
		userStore   users.Store
		borrowStore borrows.Store
	)
	switch cfg.Storage {
	case config.StorageMySQL:
		conn, err := db.Connect(cfg.DB)
		if err != nil {
			panic(err)
		}
		defer conn.Close()
		if err := db.RunMigrations(cfg.DB); err != nil {
			panic(err)
		}
		log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)
		bookStore = books.NewMySQLStore(conn)
		userStore = users.NewMySQLStore(conn)
		borrowStore = borrows.NewMySQLStore(conn)
	default:
		if err := os.MkdirAll(cfg.DatabaseDir, 0o755); err != nil {
			panic(err)
		}
		log.Printf("[INFO] using flat files under %s", cfg.DatabaseDir)
		bookStore = books.NewFileStore(filepath.Join(cfg.DatabaseDir, "books.txt"))
		userStore = users.NewFileStore(filepath.Join(cfg.DatabaseDir, "users.txt"))
		borrowStore = borrows.NewFileStore(filepath.Join(cfg.DatabaseDir, "borrows.txt"))
	}

	// サービス組み立て。台帳は蔵書・利用者に依存する
	ctx := context.Background()
	catalog := books.NewService(bookStore)
	if err := catalog.Load(ctx); err != nil {
		panic(err)
	}
	directory := users.NewService(userStore)
	if err := directory.Load(ctx); err != nil {
		panic(err)
	}
	ledger := borrows.NewService(borrowStore, catalog, directory, cfg.LoanDays)
	if err := ledger.Load(ctx); err != nil {
		panic(err)
	}

	// 貸出中の蔵書・利用者は削除させない
	catalog.SetInUseCheck(ledger.HasActiveForBook)
	directory.SetInUseCheck(ledger.HasActiveForUser)

	collector := metrics.NewCollector()
	ledger.SetMetrics(collector)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:            rate.Limit(cfg.RateLimit.RPS),
		Burst:           cfg.RateLimit.Burst,
		CleanupInterval: time.Minute,
	})
	defer limiter.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	r.Use(middleware.RequestID())
	r.Use(limiter.Middleware())
	r.Use(collector.Middleware())

	if cfg.Mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス・メトリクス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	// /api/v1
	api := r.Group("/api/v1")
	books.RegisterRoutes(api, catalog)
	users.RegisterRoutes(api, directory)
	borrows.RegisterRoutes(api, ledger)
	reports.RegisterRoutes(api, reports.NewService(catalog, directory, ledger))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		log.Printf("[INFO] listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
