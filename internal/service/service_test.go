package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/resonatefm/resonate/internal/cache"
	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/log"
	"github.com/resonatefm/resonate/internal/store"
)

// fakeAPI implements domain.API with per-endpoint counters and canned data.
type fakeAPI struct {
	profileCalls int32
	historyCalls int32
	pinsSaves    int32
	statsCalls   int32

	profile    domain.Profile
	historyFn  func(after int64) ([]domain.SongPlay, error)
	savePinErr error
}

func (f *fakeAPI) GetProfile(ctx context.Context) (domain.Profile, error) {
	atomic.AddInt32(&f.profileCalls, 1)
	return f.profile, nil
}

func (f *fakeAPI) GetUserProfile(ctx context.Context, subjectID string) (domain.SocialProfile, error) {
	return domain.SocialProfile{UserID: subjectID, Username: "remote"}, nil
}

func (f *fakeAPI) GetFriends(ctx context.Context) ([]domain.Friend, error) {
	return []domain.Friend{{UserID: "f1"}}, nil
}

func (f *fakeAPI) GetMilestones(ctx context.Context) ([]domain.Milestone, error) {
	return []domain.Milestone{{ID: "m1"}}, nil
}

func (f *fakeAPI) GetPins(ctx context.Context) (domain.Pins, error) {
	return domain.Pins{Tracks: []domain.Pin{{ID: "t1"}}}, nil
}

func (f *fakeAPI) SavePins(ctx context.Context, p domain.Pins) error {
	atomic.AddInt32(&f.pinsSaves, 1)
	return f.savePinErr
}

func (f *fakeAPI) GetDailyPlays(ctx context.Context) ([]domain.DayCount, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	return []domain.DayCount{{Date: "2026-03-14", Count: 2}}, nil
}

func (f *fakeAPI) GetDiscoveries(ctx context.Context) ([]domain.Discovery, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	return []domain.Discovery{{TrackID: "d1"}}, nil
}

func (f *fakeAPI) GetWeeklyComparison(ctx context.Context) (domain.WeeklyComparison, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	return domain.WeeklyComparison{ThisWeekMinutes: 10}, nil
}

func (f *fakeAPI) GetSongHistory(ctx context.Context, after int64) ([]domain.SongPlay, error) {
	atomic.AddInt32(&f.historyCalls, 1)
	if f.historyFn != nil {
		return f.historyFn(after)
	}
	return nil, nil
}

func (f *fakeAPI) GetHourlyPlays(ctx context.Context) ([]int, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	return []int{1, 2}, nil
}

func (f *fakeAPI) GetNowPlaying(ctx context.Context) (*domain.NowPlaying, error) {
	return &domain.NowPlaying{Name: "song"}, nil
}

func newTestService(t *testing.T) (*Service, *fakeAPI, *cache.Cache) {
	t.Helper()
	st, err := store.Open("", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	c := cache.New(st, log.NullLogger())
	api := &fakeAPI{}
	svc := New(c, api, log.NullLogger())
	svc.Login("u1", "ada", "ada@example.com")
	return svc, api, c
}

func TestProfileSecondCallServedFromCache(t *testing.T) {
	svc, api, _ := newTestService(t)
	api.profile = domain.Profile{Username: "ada"}
	ctx := context.Background()

	if err := svc.Profile(ctx, false, nil); err != nil {
		t.Fatalf("Profile: %v", err)
	}
	var got domain.Profile
	if err := svc.Profile(ctx, false, func(p domain.Profile) { got = p }); err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if n := atomic.LoadInt32(&api.profileCalls); n != 1 {
		t.Errorf("remote called %d times, want 1", n)
	}
	if got.Username != "ada" {
		t.Errorf("applied %+v from cache", got)
	}
}

func TestProfileForceRefetches(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()

	svc.Profile(ctx, false, nil)
	svc.Profile(ctx, true, nil)

	if n := atomic.LoadInt32(&api.profileCalls); n != 2 {
		t.Errorf("remote called %d times, want 2", n)
	}
}

func TestHistoryIncrementalFetchAndMerge(t *testing.T) {
	svc, api, c := newTestService(t)
	ctx := context.Background()

	c.SaveSongPlays([]domain.SongPlay{
		{ListenedAt: 100, Name: "old"},
		{ListenedAt: 200, Name: "colliding"},
	})

	var gotAfter int64
	api.historyFn = func(after int64) ([]domain.SongPlay, error) {
		gotAfter = after
		return []domain.SongPlay{
			{ListenedAt: 200, Name: "corrected"},
			{ListenedAt: 300, Name: "new"},
		}, nil
	}

	var applied []domain.SongPlay
	if err := svc.History(ctx, true, func(ps []domain.SongPlay) { applied = ps }); err != nil {
		t.Fatalf("History: %v", err)
	}

	if gotAfter != 200 {
		t.Errorf("fetched after=%d, want the newest cached timestamp 200", gotAfter)
	}
	if len(applied) != 3 {
		t.Fatalf("applied %d plays, want 3", len(applied))
	}
	if applied[0].Name != "old" || applied[1].Name != "corrected" || applied[2].Name != "new" {
		t.Errorf("merge mismatch: %+v", applied)
	}

	// The merged history also landed in the cache.
	if got := c.SongHistory(); len(got) != 3 || got[1].Name != "corrected" {
		t.Errorf("cached history mismatch: %+v", got)
	}
}

func TestHistoryFreshCacheSkipsRemote(t *testing.T) {
	svc, api, c := newTestService(t)
	ctx := context.Background()

	// A play moments ago keeps the cached history inside the fresh window.
	c.SaveSongPlays([]domain.SongPlay{{ListenedAt: time.Now().Unix(), Name: "now"}})

	if err := svc.History(ctx, false, nil); err != nil {
		t.Fatalf("History: %v", err)
	}
	if n := atomic.LoadInt32(&api.historyCalls); n != 0 {
		t.Errorf("remote called %d times, want 0", n)
	}
}

func TestHistoryStaleCacheTriggersRemote(t *testing.T) {
	svc, api, c := newTestService(t)
	ctx := context.Background()

	c.SaveSongPlays([]domain.SongPlay{{ListenedAt: time.Now().Add(-time.Hour).Unix()}})

	if err := svc.History(ctx, false, nil); err != nil {
		t.Fatalf("History: %v", err)
	}
	if n := atomic.LoadInt32(&api.historyCalls); n != 1 {
		t.Errorf("remote called %d times, want 1", n)
	}
}

func TestMergePlays(t *testing.T) {
	cached := []domain.SongPlay{{ListenedAt: 2, Name: "b"}, {ListenedAt: 1, Name: "a"}}
	page := []domain.SongPlay{{ListenedAt: 2, Name: "b2"}, {ListenedAt: 3, Name: "c"}}

	merged := mergePlays(cached, page)

	want := []struct {
		ts   int64
		name string
	}{{1, "a"}, {2, "b2"}, {3, "c"}}
	if len(merged) != len(want) {
		t.Fatalf("got %d entries, want %d", len(merged), len(want))
	}
	for i, w := range want {
		if merged[i].ListenedAt != w.ts || merged[i].Name != w.name {
			t.Errorf("merged[%d] = %+v, want (%d, %s)", i, merged[i], w.ts, w.name)
		}
	}
}

func TestSavePinsServerFirst(t *testing.T) {
	svc, api, c := newTestService(t)
	ctx := context.Background()

	c.SavePins(domain.Pins{Tracks: []domain.Pin{{ID: "before"}}})

	api.savePinErr = errors.New("rejected")
	err := svc.SavePins(ctx, domain.Pins{Tracks: []domain.Pin{{ID: "after"}}})
	if err == nil {
		t.Fatal("expected error")
	}

	// A rejected save must leave the cached pin set untouched.
	p, _ := c.Pins()
	if len(p.Tracks) != 1 || p.Tracks[0].ID != "before" {
		t.Errorf("cache mutated on failed save: %+v", p)
	}

	api.savePinErr = nil
	if err := svc.SavePins(ctx, domain.Pins{Tracks: []domain.Pin{{ID: "after"}}}); err != nil {
		t.Fatalf("SavePins: %v", err)
	}
	p, _ = c.Pins()
	if len(p.Tracks) != 1 || p.Tracks[0].ID != "after" {
		t.Errorf("cache should hold the accepted set: %+v", p)
	}
}

func TestStatsFanOut(t *testing.T) {
	svc, api, _ := newTestService(t)
	ctx := context.Background()

	var hourly []int
	var daily []domain.DayCount
	var weekly domain.WeeklyComparison
	err := svc.Stats(ctx, false, StatsApply{
		Hourly: func(v []int) { hourly = v },
		Daily:  func(v []domain.DayCount) { daily = v },
		Weekly: func(v domain.WeeklyComparison) { weekly = v },
	})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if n := atomic.LoadInt32(&api.statsCalls); n != 4 {
		t.Errorf("stats endpoints called %d times, want 4", n)
	}
	if len(hourly) != 2 || len(daily) != 1 || weekly.ThisWeekMinutes != 10 {
		t.Errorf("applies missing: hourly=%v daily=%v weekly=%+v", hourly, daily, weekly)
	}
}

func TestUserProfileCachedPerSubject(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()

	if err := svc.UserProfile(ctx, "subject", false, nil); err != nil {
		t.Fatalf("UserProfile: %v", err)
	}
	if p, ok := c.SocialProfile("subject"); !ok || p.Username != "remote" {
		t.Errorf("expected cached social profile, got (%+v, %v)", p, ok)
	}

	svc.InvalidateSocial("subject")
	if _, ok := c.SocialProfile("subject"); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestLogoutClearsScope(t *testing.T) {
	svc, _, c := newTestService(t)

	c.SaveProfile(domain.Profile{Username: "ada"})
	svc.Logout()

	if _, ok := c.CurrentUser(); ok {
		t.Error("no current user should remain")
	}
	if _, ok := c.Profile(); ok {
		t.Error("profile should be cleared")
	}
}
