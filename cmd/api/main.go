package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "antifake/internal/adapters/http_server"
	"antifake/internal/adapters/observability"
	redisad "antifake/internal/adapters/redis"
	"antifake/internal/adapters/wb"
	"antifake/internal/app"
	"antifake/internal/shared"
	mysqlrepo "antifake/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	market, err := wb.New(cfg.CardBaseURL, cfg.FeedbackHosts, cfg.WBDest, cfg.WBLocale, cfg.WBRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize marketplace client")
	}
	svc := app.NewAnalysisService(market, repo, cache, cfg.CardTTL, cfg.ReviewsTTL, cfg.ReviewLimit)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(
		&server.Handlers{A: svc, Prices: repo},
		server.RateLimit(cache, cfg.RateLimitWindow, cfg.RateLimitMax),
	)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
