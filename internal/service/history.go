package service

import (
	"context"
	"sort"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/fetch"
)

// historyFreshWindow is the screen-level staleness rule for song history:
// cached history counts as fresh only if its newest play is this recent.
// Decoupled from the cache's own policy (history rows never expire).
const historyFreshWindow = 5 * time.Minute

// History loads the listening history, cache first. The remote fetch is
// incremental — only plays newer than the newest cached one are requested —
// and the merged result accumulates into the cache, with same-timestamp
// entries updated in place under their original key.
func (s *Service) History(ctx context.Context, force bool, apply func([]domain.SongPlay)) error {
	err := fetch.DoSlice(ctx, force, fetch.Slice[domain.SongPlay]{
		Read:  s.cache.SongHistory,
		Stale: s.historyStale,
		Fetch: func(ctx context.Context) ([]domain.SongPlay, error) {
			cached := s.cache.SongHistory()
			page, err := s.client.GetSongHistory(ctx, newestPlay(cached))
			if err != nil {
				return nil, err
			}
			return mergePlays(cached, page), nil
		},
		Apply: apply,
		Write: s.cache.SaveSongPlays,
		Key:   "history",
		Group: &s.flights,
	})
	return s.report("history", err)
}

// historyStale reports whether the cached history's newest play is too old
// to show without a refresh.
func (s *Service) historyStale(plays []domain.SongPlay) bool {
	if len(plays) == 0 {
		return true
	}
	return time.Since(time.Unix(newestPlay(plays), 0)) > historyFreshWindow
}

func newestPlay(plays []domain.SongPlay) int64 {
	var newest int64
	for _, p := range plays {
		if p.ListenedAt > newest {
			newest = p.ListenedAt
		}
	}
	return newest
}

// mergePlays overlays page onto cached: new timestamps append, colliding
// timestamps take the page's mutable fields. Result is in listened-at order.
func mergePlays(cached, page []domain.SongPlay) []domain.SongPlay {
	byTS := make(map[int64]domain.SongPlay, len(cached)+len(page))
	for _, p := range cached {
		byTS[p.ListenedAt] = p
	}
	for _, p := range page {
		byTS[p.ListenedAt] = p
	}
	merged := make([]domain.SongPlay, 0, len(byTS))
	for _, p := range byTS {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ListenedAt < merged[j].ListenedAt })
	return merged
}

// NowPlaying fetches the current track directly; it is too volatile to cache.
func (s *Service) NowPlaying(ctx context.Context) (*domain.NowPlaying, error) {
	np, err := s.client.GetNowPlaying(ctx)
	if err != nil {
		return nil, s.report("now playing", err)
	}
	return np, nil
}
