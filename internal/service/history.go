package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chess-tracker/internal/api"
	"chess-tracker/internal/cache"
	"chess-tracker/internal/config"
	"chess-tracker/internal/constants"
	"chess-tracker/internal/domain"
)

// HistoryService produces a player's daily rating series: one sample per
// UTC day, taken from the last rated game of the configured time class on
// that day. Results are cached per handle for the current UTC day.
type HistoryService struct {
	client    *api.ChessClient
	cache     *cache.DayCache
	timeClass string
	now       func() time.Time
	logger    zerolog.Logger
}

func NewHistoryService(client *api.ChessClient, dayCache *cache.DayCache, cfg *config.Config, logger zerolog.Logger) *HistoryService {
	return &HistoryService{
		client:    client,
		cache:     dayCache,
		timeClass: cfg.TimeClass,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *HistoryService) GetRatingHistory(ctx context.Context, handle string) (domain.HistorySeries, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("handle", handle).Str("time_class", s.timeClass).Msg("getting rating history")

	return s.cache.GetOrCompute(ctx, handle, func(ctx context.Context) (domain.HistorySeries, error) {
		return s.computeHistory(ctx, handle)
	})
}

func (s *HistoryService) computeHistory(ctx context.Context, handle string) (domain.HistorySeries, error) {
	urls, err := resolveArchives(ctx, s.client, handle, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to resolve archives")
		return nil, err
	}

	games := fetchAllArchives(ctx, s.client, urls, constants.ArchiveBatchSize, s.logger)
	series := reduceHistory(games, handle, s.timeClass)

	s.logger.Info().
		Str("handle", handle).
		Int("archives", len(urls)).
		Int("games", len(games)).
		Int("samples", len(series)).
		Msg("rating history computed")

	return series, nil
}

// reduceHistory filters to rated games of one time class, resolves the
// player's side by case-insensitive username, and keeps exactly one sample
// per UTC day: the one from the game with the greatest end_time.
func reduceHistory(games []api.Game, handle, timeClass string) domain.HistorySeries {
	target := strings.ToLower(handle)

	var kept []api.Game
	for _, g := range games {
		if g.TimeClass != timeClass || !g.Rated {
			continue
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].EndTime < kept[j].EndTime })

	byDay := make(map[string]domain.RatingSample)
	for _, g := range kept {
		var side api.PlayerSide
		switch target {
		case strings.ToLower(g.White.Username):
			side = g.White
		case strings.ToLower(g.Black.Username):
			side = g.Black
		default:
			continue
		}
		if side.Rating == nil {
			continue
		}

		day := time.Unix(g.EndTime, 0).UTC().Format("2006-01-02")
		if existing, ok := byDay[day]; ok && g.EndTime <= existing.Epoch {
			continue
		}
		byDay[day] = domain.RatingSample{Date: day, Rating: *side.Rating, Epoch: g.EndTime}
	}

	series := make(domain.HistorySeries, 0, len(byDay))
	for _, sample := range byDay {
		series = append(series, sample)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
