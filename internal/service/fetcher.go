package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chess-tracker/internal/api"
)

// fetchAllArchives fetches archive URLs in consecutive batches of at most
// batchSize. Within a batch every fetch runs concurrently and the batch
// settles fully before the next one starts. A failed month contributes zero
// games and is logged, never surfaced: one missing archive must not abort
// the whole aggregation.
func fetchAllArchives(ctx context.Context, client *api.ChessClient, urls []string, batchSize int, logger zerolog.Logger) []api.Game {
	var games []api.Game

	for start := 0; start < len(urls); start += batchSize {
		end := min(start+batchSize, len(urls))
		batch := urls[start:end]
		results := make([][]api.Game, len(batch))

		g := new(errgroup.Group)
		for i, url := range batch {
			g.Go(func() error {
				resp, err := client.GetMonthlyArchive(ctx, url)
				if err != nil {
					logger.Warn().Err(err).Str("url", url).Msg("archive fetch failed, skipping month")
					return nil
				}
				results[i] = resp.Games
				return nil
			})
		}
		// tasks absorb their own failures, so Wait only synchronizes
		_ = g.Wait()

		for _, r := range results {
			games = append(games, r...)
		}
	}

	return games
}
