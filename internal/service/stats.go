package service

import (
	"context"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/fetch"
	"golang.org/x/sync/errgroup"
)

// StatsApply receives each stats sub-blob as it resolves. Callbacks may run
// from different goroutines during a fan-out; each one fires at most once.
type StatsApply struct {
	Hourly      func([]int)
	Daily       func([]domain.DayCount)
	Discoveries func([]domain.Discovery)
	Weekly      func(domain.WeeklyComparison)
}

// HourlyPlays loads per-minute play counts for the current hour. The cache
// hits only while the wall-clock hour matches the cached hour.
func (s *Service) HourlyPlays(ctx context.Context, force bool, apply func([]int)) error {
	err := fetch.Do(ctx, force, fetch.Single[[]int]{
		Read:  s.cache.HourlyPlays,
		Fetch: s.client.GetHourlyPlays,
		Apply: apply,
		Write: s.cache.SaveHourlyPlays,
		Key:   "stats:hourly",
		Group: &s.flights,
	})
	return s.report("hourly plays", err)
}

// DailyPlays loads play counts per day.
func (s *Service) DailyPlays(ctx context.Context, force bool, apply func([]domain.DayCount)) error {
	err := fetch.DoSlice(ctx, force, fetch.Slice[domain.DayCount]{
		Read: func() []domain.DayCount {
			days, _ := s.cache.DailyPlays()
			return days
		},
		Fetch: s.client.GetDailyPlays,
		Apply: apply,
		Write: s.cache.SaveDailyPlays,
		Key:   "stats:daily",
		Group: &s.flights,
	})
	return s.report("daily plays", err)
}

// Discoveries loads recently discovered tracks.
func (s *Service) Discoveries(ctx context.Context, force bool, apply func([]domain.Discovery)) error {
	err := fetch.DoSlice(ctx, force, fetch.Slice[domain.Discovery]{
		Read: func() []domain.Discovery {
			ds, _ := s.cache.Discoveries()
			return ds
		},
		Fetch: s.client.GetDiscoveries,
		Apply: apply,
		Write: s.cache.SaveDiscoveries,
		Key:   "stats:discoveries",
		Group: &s.flights,
	})
	return s.report("discoveries", err)
}

// WeeklyComparison loads this week's minutes against last week's.
func (s *Service) WeeklyComparison(ctx context.Context, force bool, apply func(domain.WeeklyComparison)) error {
	err := fetch.Do(ctx, force, fetch.Single[domain.WeeklyComparison]{
		Read:  s.cache.WeeklyComparison,
		Fetch: s.client.GetWeeklyComparison,
		Apply: apply,
		Write: s.cache.SaveWeeklyComparison,
		Key:   "stats:weekly",
		Group: &s.flights,
	})
	return s.report("weekly comparison", err)
}

// Stats fans out all four sub-blob loads concurrently, the way the stats
// screen issues them. Cache reads and writes stay serialized inside the
// facade; only the remote calls overlap. The first failure cancels the
// remaining branches and is returned.
func (s *Service) Stats(ctx context.Context, force bool, apply StatsApply) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.HourlyPlays(ctx, force, apply.Hourly) })
	g.Go(func() error { return s.DailyPlays(ctx, force, apply.Daily) })
	g.Go(func() error { return s.Discoveries(ctx, force, apply.Discoveries) })
	g.Go(func() error { return s.WeeklyComparison(ctx, force, apply.Weekly) })

	return g.Wait()
}

// InvalidateStats forces every stats sub-blob to miss on its next read.
func (s *Service) InvalidateStats() {
	s.cache.InvalidateStats()
}
