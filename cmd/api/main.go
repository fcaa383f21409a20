package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "wello-backend/internal/adapter/http"
	"wello-backend/internal/adapter/middleware"
	"wello-backend/internal/adapter/repository/mysql"
	"wello-backend/internal/config"
	orderDomain "wello-backend/internal/domain/order"
	profileDomain "wello-backend/internal/domain/profile"
	sessionDomain "wello-backend/internal/domain/session"
	"wello-backend/internal/infrastructure/cache"
	"wello-backend/internal/infrastructure/db"
	"wello-backend/internal/infrastructure/logger"
	"wello-backend/internal/infrastructure/metrics"
	"wello-backend/internal/usecase/matching"
	orderuc "wello-backend/internal/usecase/order"
	profileuc "wello-backend/internal/usecase/profile"
	sessionuc "wello-backend/internal/usecase/session"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zlog.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		zlog.Fatal("mysql connect failed", zap.Error(err))
	}
	if err := gdb.AutoMigrate(
		&orderDomain.Order{},
		&profileDomain.Profile{},
		&sessionDomain.Session{},
	); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPoolSize)
	if err != nil {
		zlog.Fatal("redis connect failed", zap.Error(err))
	}

	// repositories + unit of work
	orderRepo := mysql.NewOrderRepository(gdb)
	profileRepo := mysql.NewProfileRepository(gdb)
	sessionRepo := mysql.NewSessionRepository(gdb)
	unit := mysql.NewGormUoW(gdb)

	engine, err := matching.NewEngine(matching.DefaultWeights(), cfg.ScoringWorkers)
	if err != nil {
		zlog.Fatal("engine init failed", zap.Error(err))
	}

	// usecases
	orderUC := orderuc.NewUsecase(orderRepo, profileRepo, unit, zlog)
	profileUC := profileuc.NewUsecase(profileRepo, zlog)
	manager := sessionuc.NewManager(unit, orderRepo, profileRepo, sessionRepo, engine, zlog)

	// handlers
	h := httpadp.NewHandler()
	orderH := httpadp.NewOrderHandler(orderUC)
	profileH := httpadp.NewProfileHandler(profileUC)
	matchH := httpadp.NewMatchHandler(manager)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	idemp := middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zlog)

	// routes
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.POST("/orders", orderH.SubmitOrder, idemp)
	e.GET("/orders/:order_id", orderH.GetOrder)
	e.POST("/orders/:order_id/cancel", orderH.CancelOrder, idemp)
	e.GET("/orders/:order_id/schedule", orderH.GetSchedule)
	e.GET("/market/orders", orderH.ListMarket)
	e.GET("/owners/:owner_id/orders", orderH.ListOwnerOrders)

	e.PUT("/profiles/:profile_id", profileH.UpsertProfile, idemp)
	e.GET("/profiles/:profile_id", profileH.GetProfile)

	e.POST("/orders/:order_id/match", matchH.CreateSession, idemp)
	e.GET("/sessions/:session_id", matchH.GetSession)
	e.POST("/sessions/:session_id/accept", matchH.AcceptCandidate, idemp)
	e.POST("/sessions/:session_id/reject", matchH.RejectSession, idemp)

	// background sweep for presented sessions whose order expiry passed
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		tick := time.NewTicker(time.Duration(cfg.ExpireSweepSecs) * time.Second)
		defer tick.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-tick.C:
				n, err := manager.ExpireDue(sweepCtx)
				if err != nil {
					zlog.Warn("expiry sweep failed", zap.Error(err))
					continue
				}
				if n > 0 {
					zlog.Info("expiry sweep", zap.Int("expired", n))
				}
			}
		}
	}()

	go func() {
		addr := ":" + cfg.AppPort
		zlog.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			zlog.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("shutdown failed", zap.Error(err))
	}
}
