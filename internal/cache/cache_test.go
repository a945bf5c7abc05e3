package cache

import (
	"testing"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/log"
	"github.com/resonatefm/resonate/internal/store"
)

// testClock is a settable wall clock.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }
func (c *testClock) set(hour, minute int) {
	c.t = time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func newTestCache(t *testing.T) (*Cache, *store.Store, *testClock) {
	t.Helper()
	st, err := store.Open("", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	clock := &testClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	c := New(st, log.NullLogger(), WithClock(clock.now))
	return c, st, clock
}

func TestSetCurrentUserIdempotent(t *testing.T) {
	c, st, _ := newTestCache(t)

	c.SetCurrentUser("u1", "ada", "ada@example.com")
	c.SetCurrentUser("u1", "renamed", "other@example.com")

	acct, ok := c.CurrentUser()
	if !ok {
		t.Fatal("expected current user")
	}
	if acct.Username != "ada" || acct.Email != "ada@example.com" {
		t.Errorf("repeat login must not overwrite the account row, got %+v", acct)
	}

	id, ok := st.CurrentAccountID()
	if !ok || id != "u1" {
		t.Errorf("current pointer = (%q, %v), want (u1, true)", id, ok)
	}
}

func TestCurrentUserRestoredOnNew(t *testing.T) {
	st, err := store.Open("", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	st.SaveAccount(domain.Account{ID: "u1", Username: "ada"})
	st.SetCurrentAccountID("u1")

	c := New(st, log.NullLogger())
	acct, ok := c.CurrentUser()
	if !ok || acct.ID != "u1" {
		t.Errorf("expected current user restored from store, got (%+v, %v)", acct, ok)
	}
}

func TestNoCurrentUserIsNoOp(t *testing.T) {
	c, st, _ := newTestCache(t)

	c.SaveProfile(domain.Profile{Username: "ada"})
	if _, ok := c.Profile(); ok {
		t.Error("expected miss with no current user")
	}
	c.SaveSongPlays([]domain.SongPlay{{ListenedAt: 1}})
	if got := c.SongHistory(); got != nil {
		t.Errorf("expected nil history, got %+v", got)
	}

	// Nothing should have been written at all.
	if _, ok := st.GetRecord(store.TableProfiles, ""); ok {
		t.Error("no row should exist without a current user")
	}
}

func TestProfileTTL(t *testing.T) {
	c, st, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SaveProfile(domain.Profile{Username: "ada", TotalPlays: 10})

	if p, ok := c.Profile(); !ok || p.Username != "ada" {
		t.Fatalf("expected fresh hit, got (%+v, %v)", p, ok)
	}

	// One second before expiry is still a hit.
	clock.advance(24*time.Hour - time.Second)
	if _, ok := c.Profile(); !ok {
		t.Fatal("expected hit just before expiry")
	}

	// At exactly the expiry instant the entry is a miss.
	clock.advance(time.Second)
	if _, ok := c.Profile(); ok {
		t.Fatal("expected miss at expiry instant")
	}

	// The expired read also clears the payload while keeping the row.
	rec, ok := st.GetRecord(store.TableProfiles, "u1")
	if !ok {
		t.Fatal("row should survive expiry")
	}
	if len(rec.Payload) != 0 {
		t.Errorf("expired payload should be cleared, got %q", rec.Payload)
	}
}

func TestHourlyPlaysHourScope(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	clock.set(10, 5)
	c.SaveHourlyPlays([]int{0, 1, 2})

	// Later in the same hour: hit.
	clock.set(10, 59)
	if got, ok := c.HourlyPlays(); !ok || len(got) != 3 {
		t.Fatalf("expected same-hour hit, got (%v, %v)", got, ok)
	}

	// The hour rolls over: miss even though the TTL has not elapsed.
	clock.set(11, 0)
	if _, ok := c.HourlyPlays(); ok {
		t.Fatal("expected miss after the hour rolled over")
	}

	// A fresh save in the new hour hits again.
	c.SaveHourlyPlays([]int{9})
	if got, ok := c.HourlyPlays(); !ok || len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected new-hour hit, got (%v, %v)", got, ok)
	}
}

func TestStatsSubBlobsIndependent(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SaveDailyPlays([]domain.DayCount{{Date: "2026-03-14", Count: 3}})
	clock.advance(30 * time.Minute)
	c.SaveDiscoveries([]domain.Discovery{{TrackID: "t1"}})

	// 40 minutes later daily (70m old) has expired but discoveries (40m old)
	// has not: each sub-blob carries its own expiry.
	clock.advance(40 * time.Minute)
	if _, ok := c.DailyPlays(); ok {
		t.Error("daily should have expired")
	}
	if _, ok := c.Discoveries(); !ok {
		t.Error("discoveries should still be valid")
	}
}

func TestInvalidateStats(t *testing.T) {
	c, _, _ := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SaveDailyPlays([]domain.DayCount{{Date: "2026-03-14"}})
	c.SaveWeeklyComparison(domain.WeeklyComparison{ThisWeekMinutes: 5})
	c.SaveHourlyPlays([]int{1})

	c.InvalidateStats()

	if _, ok := c.DailyPlays(); ok {
		t.Error("daily should miss after invalidation")
	}
	if _, ok := c.WeeklyComparison(); ok {
		t.Error("weekly should miss after invalidation")
	}
	if _, ok := c.HourlyPlays(); ok {
		t.Error("hourly should miss after invalidation")
	}
}

func TestPinsReplaceWholesaleAndNeverExpire(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SavePins(domain.Pins{Tracks: []domain.Pin{{ID: "t1"}, {ID: "t2"}}})
	c.SavePins(domain.Pins{Albums: []domain.Pin{{ID: "a1"}}})

	p, ok := c.Pins()
	if !ok {
		t.Fatal("expected pins")
	}
	if len(p.Tracks) != 0 || len(p.Albums) != 1 {
		t.Errorf("save must replace wholesale, got %+v", p)
	}

	// Pins carry no automatic expiry.
	clock.advance(30 * 24 * time.Hour)
	if _, ok := c.Pins(); !ok {
		t.Error("pins should never expire on their own")
	}
}

func TestSocialProfileScenario(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("viewer", "ada", "")

	c.SaveSocialProfile(domain.SocialProfile{UserID: "subject", Username: "grace"})
	if p, ok := c.SocialProfile("subject"); !ok || p.Username != "grace" {
		t.Fatalf("expected hit, got (%+v, %v)", p, ok)
	}

	// Explicit invalidation stamps the expiry to now; the next read misses.
	c.InvalidateSocialProfile("subject")
	if _, ok := c.SocialProfile("subject"); ok {
		t.Fatal("expected miss after invalidation")
	}

	// A fresh save re-populates the entry.
	c.SaveSocialProfile(domain.SocialProfile{UserID: "subject", Username: "grace2"})
	if p, ok := c.SocialProfile("subject"); !ok || p.Username != "grace2" {
		t.Fatalf("expected hit after re-save, got (%+v, %v)", p, ok)
	}

	// TTL expiry also applies.
	clock.advance(5 * time.Minute)
	if _, ok := c.SocialProfile("subject"); ok {
		t.Error("expected miss after TTL")
	}
}

func TestSocialProfileScopedToViewer(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetCurrentUser("viewer1", "a", "")
	c.SaveSocialProfile(domain.SocialProfile{UserID: "subject", Username: "grace"})

	c.SetCurrentUser("viewer2", "b", "")
	if _, ok := c.SocialProfile("subject"); ok {
		t.Error("one viewer's cached view must not serve another viewer")
	}
}

func TestInvalidateAllSocial(t *testing.T) {
	c, _, _ := newTestCache(t)
	c.SetCurrentUser("viewer", "ada", "")

	c.SaveSocialProfile(domain.SocialProfile{UserID: "s1"})
	c.SaveSocialProfile(domain.SocialProfile{UserID: "s2"})

	c.InvalidateAllSocial()

	if _, ok := c.SocialProfile("s1"); ok {
		t.Error("s1 should miss")
	}
	if _, ok := c.SocialProfile("s2"); ok {
		t.Error("s2 should miss")
	}
}

func TestSongHistoryAccumulatesAndOverwrites(t *testing.T) {
	c, _, _ := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SaveSongPlays([]domain.SongPlay{
		{ListenedAt: 100, Name: "first"},
		{ListenedAt: 200, Name: "second"},
	})
	// Same timestamp: the existing row's mutable fields are overwritten, no
	// duplicate is created.
	c.SaveSongPlays([]domain.SongPlay{{ListenedAt: 100, Name: "first-renamed"}})

	plays := c.SongHistory()
	if len(plays) != 2 {
		t.Fatalf("got %d plays, want 2", len(plays))
	}
	if plays[0].Name != "first-renamed" || plays[1].Name != "second" {
		t.Errorf("unexpected history: %+v", plays)
	}
}

func TestClearCurrentUserData(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetCurrentUser("other", "bob", "")
	c.SaveProfile(domain.Profile{Username: "bob"})

	c.SetCurrentUser("u1", "ada", "")
	c.SaveProfile(domain.Profile{Username: "ada"})
	c.SaveSongPlays([]domain.SongPlay{{ListenedAt: 1}})
	c.SavePins(domain.Pins{Tracks: []domain.Pin{{ID: "t"}}})
	c.SaveFriends([]domain.Friend{{UserID: "f1"}})

	c.ClearCurrentUserData()

	if _, ok := c.CurrentUser(); ok {
		t.Error("no current user should remain")
	}
	if _, ok := c.Profile(); ok {
		t.Error("profile should be gone")
	}
	if got := c.SongHistory(); len(got) != 0 {
		t.Error("history should be gone")
	}

	// The other account's data survives and is reachable after re-login.
	c.SetCurrentUser("other", "bob", "")
	if p, ok := c.Profile(); !ok || p.Username != "bob" {
		t.Errorf("other account's profile should survive, got (%+v, %v)", p, ok)
	}
}

func TestClearAllData(t *testing.T) {
	c, _, _ := newTestCache(t)

	c.SetCurrentUser("u1", "ada", "")
	c.SaveProfile(domain.Profile{Username: "ada"})
	c.SetCurrentUser("u2", "bob", "")
	c.SaveProfile(domain.Profile{Username: "bob"})

	c.ClearAllData()

	if _, ok := c.CurrentUser(); ok {
		t.Error("no current user should remain")
	}
	c.SetCurrentUser("u1", "", "")
	if _, ok := c.Profile(); ok {
		t.Error("all profiles should be gone")
	}
}

func TestMarkSynced(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	clock.advance(time.Hour)
	c.MarkSynced()

	acct, _ := c.CurrentUser()
	if acct.LastSyncedAt != clock.t.Unix() {
		t.Errorf("LastSyncedAt = %d, want %d", acct.LastSyncedAt, clock.t.Unix())
	}
}

func TestMilestonesAndFriendsTTL(t *testing.T) {
	c, _, clock := newTestCache(t)
	c.SetCurrentUser("u1", "ada", "")

	c.SaveMilestones([]domain.Milestone{{ID: "m1"}})
	c.SaveFriends([]domain.Friend{{UserID: "f1"}})

	clock.advance(5 * time.Minute)
	if _, ok := c.Friends(); ok {
		t.Error("friends should expire after 5 minutes")
	}
	if _, ok := c.Milestones(); !ok {
		t.Error("milestones should still be valid at 5 minutes")
	}

	clock.advance(55 * time.Minute)
	if _, ok := c.Milestones(); ok {
		t.Error("milestones should expire after an hour")
	}
}
