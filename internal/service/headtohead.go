package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"chess-tracker/internal/api"
	"chess-tracker/internal/config"
	"chess-tracker/internal/constants"
	"chess-tracker/internal/domain"
)

// HeadToHeadService lists every rated game of the configured time class
// between two players, newest first. It walks the first player's archives
// only and is deliberately uncached.
type HeadToHeadService struct {
	client    *api.ChessClient
	timeClass string
	now       func() time.Time
	logger    zerolog.Logger
}

func NewHeadToHeadService(client *api.ChessClient, cfg *config.Config, logger zerolog.Logger) *HeadToHeadService {
	return &HeadToHeadService{
		client:    client,
		timeClass: cfg.TimeClass,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *HeadToHeadService) GamesBetween(ctx context.Context, handle, opponent string) ([]domain.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("handle", handle).Str("opponent", opponent).Msg("getting head-to-head games")

	urls, err := resolveArchives(ctx, s.client, handle, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to resolve archives")
		return nil, err
	}

	games := fetchAllArchives(ctx, s.client, urls, constants.ArchiveBatchSize, s.logger)
	matched := filterBetween(games, handle, opponent, s.timeClass)

	s.logger.Info().
		Str("handle", handle).
		Str("opponent", opponent).
		Int("games", len(games)).
		Int("matched", len(matched)).
		Msg("head-to-head computed")

	return matched, nil
}

// filterBetween keeps rated games of the given time class whose two sides
// are exactly the two handles, in either color assignment. Every qualifying
// game is kept, repeats included.
func filterBetween(games []api.Game, handle, opponent, timeClass string) []domain.GameRecord {
	a := strings.ToLower(handle)
	b := strings.ToLower(opponent)

	var matched []api.Game
	for _, g := range games {
		if g.TimeClass != timeClass || !g.Rated {
			continue
		}
		white := strings.ToLower(g.White.Username)
		black := strings.ToLower(g.Black.Username)
		if (white == a && black == b) || (white == b && black == a) {
			matched = append(matched, g)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].EndTime > matched[j].EndTime })

	records := make([]domain.GameRecord, len(matched))
	for i, g := range matched {
		records[i] = toGameRecord(g)
	}
	return records
}

func toGameRecord(g api.Game) domain.GameRecord {
	return domain.GameRecord{
		URL:       g.URL,
		EndTime:   g.EndTime,
		TimeClass: g.TimeClass,
		Rated:     g.Rated,
		White:     toSide(g.White),
		Black:     toSide(g.Black),
	}
}

func toSide(s api.PlayerSide) domain.Side {
	side := domain.Side{Username: s.Username}
	if s.Rating != nil {
		side.Rating = *s.Rating
	}
	return side
}
