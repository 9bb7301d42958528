package main

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"time"

	"tg_sender/config"
	"tg_sender/internal/accounts_auth"
	"tg_sender/internal/fetch"
	"tg_sender/internal/groups"
	"tg_sender/internal/logfile"
	"tg_sender/internal/middleware"
	"tg_sender/internal/sending"
	"tg_sender/internal/tags"
	"tg_sender/internal/templates"
	"tg_sender/pkg/storage"
	"tg_sender/pkg/telegram/module"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	if err := config.Setup(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Журнал пишется в консоль и в файл с ротацией
	logFile, err := logfile.New(config.LogPath(), config.LogMaxSize(), config.LogBackups())
	if err != nil {
		log.Fatalf("Log file error: %v", err)
	}
	defer logFile.Close()
	out := io.MultiWriter(os.Stderr, logFile)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out

	if config.TelegramDebug() {
		zl, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("zap: %v", err)
		}
		defer zl.Sync()
		module.SetLogger(zl)
	}

	// Инициализация подключения к БД
	dbConn, err := sql.Open("postgres", config.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	// БД может подниматься дольше приложения, поэтому первый ping повторяем
	ctx := context.Background()
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute
	err = backoff.RetryNotify(
		func() error { return dbConn.PingContext(ctx) },
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			log.Printf("[DB WARN] БД недоступна (%v), повтор через %v", err, next)
		},
	)
	if err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}

	db := storage.NewDB(dbConn)
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	r := setupRouter(db, config.Token())

	addr := config.Addr()
	log.Printf("Starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// Настройка маршрутов
func setupRouter(db *storage.DB, token string) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("")
	api.Use(middleware.AuthRequired(token))

	accounts_auth.SetupSettingsRoutes(api.Group("/settings"), db)

	authGroup := api.Group("/auth")
	accounts_auth.SetupRoutes(authGroup, db)
	accounts_auth.SetupCheckRoutes(authGroup, db)

	fetch.SetupRoutes(api.Group("/fetch"), db)
	tags.SetupRoutes(api.Group("/tags"), db)
	groups.SetupRoutes(api.Group("/groups"), db)
	groups.SetupTopicRoutes(api.Group("/topics"), db)
	templates.SetupRoutes(api.Group("/templates"), db)
	sending.SetupRoutes(api.Group("/send"), db)

	log.Printf("[ROUTER] Routes initialized")
	return r
}
