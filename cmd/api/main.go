package main

import (
	"context"

	"affiliate-locator/internal/cache"
	"affiliate-locator/internal/config"
	"affiliate-locator/internal/dataset"
	"affiliate-locator/internal/handler"
	"affiliate-locator/internal/logger"
	"affiliate-locator/internal/repository"
	"affiliate-locator/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

//	@title			Affiliate Locator API
//	@version		1.0
//	@description	Finds affiliates within a radius of the office.
//	@BasePath		/
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := logger.New(cfg)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Dataset source
	var loader dataset.Loader
	switch cfg.Source {
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBSource)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to db")
		}
		defer pool.Close()
		loader = repository.NewPostgresLoader(pool)
	default:
		loader = dataset.NewFileLoader(afero.NewOsFs(), cfg.DataFile, logger)
	}

	// Cache store
	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("cannot connect to redis")
		}
		store = cache.NewRedisStore(client)
	}

	// Initialize layers
	datasetCache := cache.New(loader, store, cfg.CacheTTL(), logger)
	affiliateService := service.NewAffiliateService(datasetCache, cfg.Office(), cfg.DistanceLimitKm)
	affiliateHandler := handler.NewAffiliateHandler(affiliateService, cfg.OfficeName, logger)

	r := handler.NewRouter(affiliateHandler, logger)

	logger.Info().
		Str("addr", cfg.ServerAddress).
		Str("source", cfg.Source).
		Float64("max_distance_km", cfg.DistanceLimitKm).
		Msg("starting affiliate locator")

	if err := r.Run(cfg.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
