package main

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"antifake/internal/adapters/observability"
	"antifake/internal/adapters/wb"
	"antifake/internal/app"
	"antifake/internal/domain"
	"antifake/internal/shared"
	mysqlrepo "antifake/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("card_base", cfg.CardBaseURL).
		Int("workers", cfg.Workers).
		Int("articles", len(cfg.TrackArticles)).
		Msg("price tracker starting")

	if len(cfg.TrackArticles) == 0 {
		log.Fatal().Msg("TRACK_ARTICLES is empty, nothing to do")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := wb.New(cfg.CardBaseURL, cfg.FeedbackHosts, cfg.WBDest, cfg.WBLocale, cfg.WBRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize marketplace client")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, article := range cfg.TrackArticles {
		article := article

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(article int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := trackOne(ctx, client, repo, article); err != nil {
				log.Warn().Int64("article", article).Err(err).Msg("track failed")
				return
			}
			log.Info().Int64("article", article).Msg("track ok")
		}(article)
	}

	wg.Wait()
	log.Info().Msg("tracking completed")
}

func trackOne(ctx context.Context, client *wb.Client, repo domain.PriceRepository, article int64) error {
	product, err := client.GetProduct(ctx, article)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = repo.LogMiss(ctx, article, 404, "card")
		}
		return err
	}
	basicU, productU := app.ParsePrice(product)
	return repo.AddSnapshot(ctx, article, basicU, productU)
}
