package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/biskaken/garage-api/internal/config"
	"github.com/biskaken/garage-api/internal/database"
	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/queue"
	"github.com/biskaken/garage-api/internal/repository"
	"github.com/biskaken/garage-api/internal/router"
	"github.com/biskaken/garage-api/internal/service"
	"github.com/biskaken/garage-api/internal/token"
)

func main() {
	// .env is a development convenience; in prod the environment is real.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)

	users := repository.NewUserRepo(db)
	customers := repository.NewCustomerRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	jobs := repository.NewJobRepo(db)
	parts := repository.NewPartRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	reports := repository.NewReportRepo(db)

	invoiceSvc := service.NewInvoiceService(invoices)

	if !cfg.IsProd() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := users.EnsureSeedAdmin(ctx, cfg.BcryptCost); err != nil {
			log.Printf("seed admin: %v", err)
		}
		cancel()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.HTTPErrorHandler = httpx.NewErrorHandler(cfg.IsProd())

	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cacher := middleware.CacheResponse(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterShop(e, handler.NewShopHandler(), codec, users)
	router.RegisterAuth(e, handler.NewAuthHandler(codec, users), codec, users, limiter)
	router.RegisterUsers(e, handler.NewUserHandler(users, cfg.BcryptCost), codec, users)
	vehicleH := handler.NewVehicleHandler(vehicles, customers)
	router.RegisterCustomers(e, handler.NewCustomerHandler(customers, vehicles), vehicleH, codec, users)
	router.RegisterVehicles(e, vehicleH, codec, users)
	router.RegisterJobs(e, handler.NewJobHandler(jobs), codec, users)
	router.RegisterInventory(e, handler.NewInventoryHandler(parts), codec, users)
	router.RegisterInvoices(e, handler.NewInvoiceHandler(invoiceSvc), codec, users)
	router.RegisterReports(e, handler.NewReportHandler(reports), codec, users, cacher)

	go func() {
		if err := queue.StartNotificationConsumer(service.BrokerURL()); err != nil {
			log.Printf("notify-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
