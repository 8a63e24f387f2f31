package main // Entry point package

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/config"
	"github.com/iliyamo/auth-session-service/internal/database"
	"github.com/iliyamo/auth-session-service/internal/handler"
	"github.com/iliyamo/auth-session-service/internal/queue"
	"github.com/iliyamo/auth-session-service/internal/repository"
	"github.com/iliyamo/auth-session-service/internal/router"
	"github.com/iliyamo/auth-session-service/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	// Credential database (read-only lookups).
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("credential db: %v", err)
	}

	// Session store. Unlike optional caching layers, the store is
	// load-bearing here: without it there are no sessions, no lockout and
	// no revocation, so startup fails hard.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("session store: redis unreachable")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(rdb)
	blacklist := repository.NewBlacklistRepo(rdb)
	lockouts := repository.NewLockoutRepo(rdb)

	gate := service.NewConcurrencyGate(sessions, cfg.MaxActiveSessions)
	tracker := service.NewSessionTracker(sessions, blacklist, gate, cfg.SessionIdleTimeout, cfg.SessionIndexGrace)
	lockout := service.NewLockoutPolicy(lockouts, cfg.LockoutThreshold, cfg.LockoutDuration, cfg.FailureWindow)

	// Audit is optional: without a broker the events are dropped rather
	// than queued against a dead connection.
	var audit service.AuditSink = service.NewAMQPAuditSink()
	if os.Getenv("AUDIT_DISABLED") == "true" {
		audit = service.NopAuditSink{}
	}
	auth := service.NewAuthService(users, lockout, tracker, blacklist, gate, audit,
		cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// Background workers: the reconciliation sweep and the audit consumer.
	go tracker.RunSweeper(context.Background(), cfg.SessionIdleTimeout/2)
	if _, ok := audit.(service.NopAuditSink); !ok {
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), handler.NewSessionHandler(auth), cfg.JWTSecret, blacklist)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
