package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/linqiu/bookmarket/internal/config"
	"github.com/linqiu/bookmarket/internal/database"
	"github.com/linqiu/bookmarket/internal/handler"
	"github.com/linqiu/bookmarket/internal/imagehost"
	"github.com/linqiu/bookmarket/internal/mail"
	"github.com/linqiu/bookmarket/internal/middleware"
	"github.com/linqiu/bookmarket/internal/queue"
	"github.com/linqiu/bookmarket/internal/repository"
	"github.com/linqiu/bookmarket/internal/router"
	queue_publisher "github.com/linqiu/bookmarket/internal/service"
	"github.com/linqiu/bookmarket/internal/validation"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("database: schema: %v", err)
	}
	cancel()

	// Redis is optional.  Without it the verification-code flow, rate
	// limiting and the response cache are disabled; everything else works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without cache and rate limiting")
	}

	users := repository.NewUserRepo(db)
	books := repository.NewBookRepo(db)
	categories := repository.NewCategoryRepo(db)
	orders := repository.NewOrderRepo(db)
	codes := repository.NewCodeStore(rdb)

	authH := handler.NewAuthHandler(cfg, users, codes, mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass))
	bookH := handler.NewBookHandler(books, categories, imagehost.New(cfg.ImageHostURL))
	orderH := handler.NewOrderHandler(orders, books, queue_publisher.Publisher{})

	// Consumer drains order.paid events into logs/orders.log and retries
	// the broker connection with backoff.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("rabbitmq: consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Validator = validation.New()

	tokenAuth := middleware.TokenAuth(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshWindowMin)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterUser(e, authH, limiter)
	router.RegisterBook(e, bookH, tokenAuth, cache)
	router.RegisterOrder(e, orderH, tokenAuth)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
