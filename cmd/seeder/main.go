package main

import (
	"context"
	"database/sql"
	"flag"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_rooms/internal/adapters/catalog"
	"hotel_rooms/internal/adapters/observability"
	redisad "hotel_rooms/internal/adapters/redis"
	"hotel_rooms/internal/app"
	"hotel_rooms/internal/shared"
	mysqlrepo "hotel_rooms/internal/storage/mysql"
)

func main() {
	fromRemote := flag.Bool("sync", false, "pull rooms from CATALOG_BASE_URL instead of loading the demo fixture")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "seeder", cfg.LogLevel)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	if !*fromRemote {
		svc := app.NewCatalogService(nil, repo, repo, cache)
		if err := svc.Seed(ctx); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		return
	}

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	svc := app.NewCatalogService(client, repo, repo, cache)

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.SyncWorkers).
		Msg("catalog sync starting")

	ids, err := svc.RemoteRoomIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list remote rooms failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.SyncWorkers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(roomID int64) {
			defer wg.Done()
			defer sem.Release(1)

			if err := svc.SyncRoom(ctx, roomID); err != nil {
				failed.Add(1)
				log.Warn().Int64("id", roomID).Err(err).Msg("sync failed")
				return
			}
			log.Info().Int64("id", roomID).Msg("sync ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("rooms", len(ids)).Int32("failed", failed.Load()).Msg("catalog sync completed")
}
