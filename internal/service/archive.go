package service

import (
	"context"
	"fmt"
	"time"

	"chess-tracker/internal/api"
	"chess-tracker/internal/constants"
)

// PlanArchives builds the monthly archive URLs for a player from the join
// month through the month of now, inclusive, in chronological order. An
// unusable join epoch or an inverted range yields an empty plan, which
// signals callers to fall back to the archive index.
func PlanArchives(baseURL, handle string, joinEpoch int64, now time.Time) []string {
	if joinEpoch <= 0 {
		return nil
	}

	join := time.Unix(joinEpoch, 0).UTC()
	start := time.Date(join.Year(), join.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	if start.After(end) {
		return nil
	}

	var urls []string
	for month := start; !month.After(end); month = month.AddDate(0, 1, 0) {
		urls = append(urls, fmt.Sprintf("%s/player/%s/games/%d/%02d",
			baseURL, handle, month.Year(), int(month.Month())))
	}
	return urls
}

// resolveArchives turns a handle into the list of archive URLs to fetch.
// Profile and archive-index failures propagate: without them no plan can be
// formed.
func resolveArchives(ctx context.Context, client *api.ChessClient, handle string, now time.Time) ([]string, error) {
	profileCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	profile, err := client.GetProfile(profileCtx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", handle, err)
	}

	urls := PlanArchives(client.BaseURL(), handle, profile.Joined, now)
	if len(urls) > 0 {
		return urls, nil
	}

	indexCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	index, err := client.GetArchiveIndex(indexCtx, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive index for %s: %w", handle, err)
	}
	return index.Archives, nil
}
