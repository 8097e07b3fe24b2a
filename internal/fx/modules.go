package fx

import (
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"chess-tracker/internal/api"
	"chess-tracker/internal/cache"
	"chess-tracker/internal/config"
	"chess-tracker/internal/constants"
	"chess-tracker/internal/database"
	"chess-tracker/internal/logger"
	"chess-tracker/internal/repository"
	"chess-tracker/internal/server"
	"chess-tracker/internal/service"
)

func ProvideDayCache(store *repository.CacheStore, log zerolog.Logger) *cache.DayCache {
	return cache.NewDayCache(store, constants.CacheKeyPrefix, time.Now, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// persistence
	fx.Provide(repository.NewCacheStore),
	fx.Provide(ProvideDayCache),
	// api client
	fx.Provide(api.NewChessClient),
	// svc
	fx.Provide(service.NewHistoryService),
	fx.Provide(service.NewHeadToHeadService),
	// server
	fx.Provide(server.NewTrackerServer),
)
