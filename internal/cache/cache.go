// Package cache is the single choke-point for local reads and writes. It
// scopes every operation to the current account, enforces the per-domain TTL
// policy, and swallows persistence errors so a broken local store degrades to
// cache misses instead of blocking fresh data.
package cache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/store"
)

// Cache implements domain.Cache on top of the persistent store.
//
// All methods serialize on an internal mutex: the store is never mutated from
// two goroutines at once, and each read/write is atomic with respect to other
// cache operations. Remote I/O never happens under the lock.
type Cache struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	current string // current account id, "" when logged out
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates the cache facade. The current-account pointer is restored from
// the store so a restart resumes the previous session's scope.
func New(st *store.Store, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{store: st, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if id, ok := st.CurrentAccountID(); ok {
		c.current = id
	}
	return c
}

// === Account lifecycle ===

// SetCurrentUser makes the given account current, creating it on first login.
// Idempotent: an existing account row is left untouched.
func (c *Cache) SetCurrentUser(id, username, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.store.GetAccount(id); !ok {
		acct := domain.Account{ID: id, Username: username, Email: email}
		if err := c.store.SaveAccount(acct); err != nil {
			c.logger.Debug("cache write failed", "table", "accounts", "error", err)
		}
	}
	if err := c.store.SetCurrentAccountID(id); err != nil {
		c.logger.Debug("cache write failed", "table", "meta", "error", err)
	}
	c.current = id
}

// CurrentUser returns the current account, if any.
func (c *Cache) CurrentUser() (domain.Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return domain.Account{}, false
	}
	return c.store.GetAccount(c.current)
}

// MarkSynced stamps the current account's last-sync time.
func (c *Cache) MarkSynced() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	acct, ok := c.store.GetAccount(c.current)
	if !ok {
		return
	}
	acct.LastSyncedAt = c.now().Unix()
	if err := c.store.SaveAccount(acct); err != nil {
		c.logger.Debug("cache write failed", "table", "accounts", "error", err)
	}
}

// ClearCurrentUserData deletes the current account and, by cascade, every
// entity it owns, then clears the current-account pointer.
func (c *Cache) ClearCurrentUserData() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	c.store.DeleteAccount(c.current)
	c.store.ClearCurrentAccountID()
	c.current = ""
	c.logger.Info("cleared current account data")
}

// ClearAllData wipes every account and owned entity.
func (c *Cache) ClearAllData() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.DeleteAll()
	c.current = ""
	c.logger.Info("cleared all cached data")
}

// === Record helpers ===

// putRecord writes a TTL'd envelope under the given key. ttl == 0 stores a
// non-expiring record.
func putRecord[T any](c *Cache, table store.Table, key string, value T, ttl time.Duration, hour int) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache marshal failed", "table", string(table), "error", err)
		return
	}
	rec := store.Record{Payload: payload, HourOfDay: hour}
	if ttl > 0 {
		rec.ExpiresAt = c.now().Add(ttl).Unix()
	}
	if err := c.store.PutRecord(table, key, rec); err != nil {
		c.logger.Debug("cache write failed", "table", string(table), "error", err)
	}
}

// getRecord reads an envelope and enforces its expiry: an expired record
// reads as absent and its payload is cleared so the next write starts clean.
// hourScoped additionally requires the cached hour-of-day to match now.
func getRecord[T any](c *Cache, table store.Table, key string, hourScoped bool) (T, bool) {
	var value T

	rec, ok := c.store.GetRecord(table, key)
	if !ok || len(rec.Payload) == 0 {
		return value, false
	}

	now := c.now()
	if rec.ExpiresAt != 0 && now.Unix() >= rec.ExpiresAt {
		c.store.ClearRecordPayload(table, key)
		return value, false
	}
	if hourScoped && rec.HourOfDay != now.Hour() {
		c.store.ClearRecordPayload(table, key)
		return value, false
	}

	if err := json.Unmarshal(rec.Payload, &value); err != nil {
		c.logger.Debug("cache decode failed", "table", string(table), "error", err)
		return value, false
	}
	return value, true
}

// === Profile ===

func (c *Cache) SaveProfile(p domain.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	p.UpdatedAt = c.now().Unix()
	putRecord(c, store.TableProfiles, c.current, p, profileTTL, 0)
}

func (c *Cache) Profile() (domain.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return domain.Profile{}, false
	}
	return getRecord[domain.Profile](c, store.TableProfiles, c.current, false)
}

// === Song history ===

// SaveSongPlays inserts or updates plays. The listened-at key is immutable:
// a play re-saved with the same timestamp overwrites the mutable fields
// (name, art) of the existing row rather than creating a second one.
func (c *Cache) SaveSongPlays(plays []domain.SongPlay) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	now := c.now().Unix()
	for _, play := range plays {
		play.UpdatedAt = now
		if err := c.store.PutSongPlay(c.current, play); err != nil {
			c.logger.Debug("cache write failed", "table", "history", "error", err)
		}
	}
}

// SongHistory returns every cached play for the current account in
// chronological order. History accumulates and never expires.
func (c *Cache) SongHistory() []domain.SongPlay {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil
	}
	return c.store.ScanSongHistory(c.current)
}

// === Stats sub-blobs ===

func (c *Cache) statKey(kind statKind) string {
	return c.current + ":" + string(kind)
}

// SaveHourlyPlays caches per-minute play counts for the current wall-clock
// hour. The record is hour-scoped: it hits only while the hour matches.
func (c *Cache) SaveHourlyPlays(minutes []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	// The hour scope is the real gate; the TTL just keeps a same-hour hit
	// from surviving into the next day.
	putRecord(c, store.TableStats, c.statKey(statHourly), minutes, statsTTL, c.now().Hour())
}

func (c *Cache) HourlyPlays() ([]int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil, false
	}
	return getRecord[[]int](c, store.TableStats, c.statKey(statHourly), true)
}

func (c *Cache) SaveDailyPlays(days []domain.DayCount) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TableStats, c.statKey(statDaily), days, statsTTL, 0)
}

func (c *Cache) DailyPlays() ([]domain.DayCount, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil, false
	}
	return getRecord[[]domain.DayCount](c, store.TableStats, c.statKey(statDaily), false)
}

func (c *Cache) SaveDiscoveries(ds []domain.Discovery) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TableStats, c.statKey(statDiscoveries), ds, statsTTL, 0)
}

func (c *Cache) Discoveries() ([]domain.Discovery, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil, false
	}
	return getRecord[[]domain.Discovery](c, store.TableStats, c.statKey(statDiscoveries), false)
}

func (c *Cache) SaveWeeklyComparison(w domain.WeeklyComparison) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TableStats, c.statKey(statWeekly), w, statsTTL, 0)
}

func (c *Cache) WeeklyComparison() (domain.WeeklyComparison, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return domain.WeeklyComparison{}, false
	}
	return getRecord[domain.WeeklyComparison](c, store.TableStats, c.statKey(statWeekly), false)
}

// InvalidateStats stamps every stats sub-blob's expiry to now, forcing the
// next read to miss without deleting the rows.
func (c *Cache) InvalidateStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	now := c.now().Unix()
	for _, kind := range statKinds {
		c.store.StampRecordExpiry(store.TableStats, c.statKey(kind), now)
	}
	c.logger.Info("invalidated stats cache")
}

// === Pins ===

// SavePins replaces the pin set wholesale: a save is a full overwrite, never
// a merge. Pins carry no automatic expiry.
func (c *Cache) SavePins(p domain.Pins) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TablePins, c.current, p, 0, 0)
}

func (c *Cache) Pins() (domain.Pins, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return domain.Pins{}, false
	}
	return getRecord[domain.Pins](c, store.TablePins, c.current, false)
}

// === Social profiles ===

func (c *Cache) socialKey(subjectID string) string {
	return c.current + ":" + subjectID
}

// SaveSocialProfile caches a viewed profile under the viewer+subject pair.
func (c *Cache) SaveSocialProfile(p domain.SocialProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" || p.UserID == "" {
		return
	}
	putRecord(c, store.TableSocial, c.socialKey(p.UserID), p, socialTTL, 0)
}

func (c *Cache) SocialProfile(subjectID string) (domain.SocialProfile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return domain.SocialProfile{}, false
	}
	return getRecord[domain.SocialProfile](c, store.TableSocial, c.socialKey(subjectID), false)
}

// InvalidateSocialProfile expires the cached profile for one subject, e.g.
// after the current user follows or unfollows them.
func (c *Cache) InvalidateSocialProfile(subjectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	c.store.StampRecordExpiry(store.TableSocial, c.socialKey(subjectID), c.now().Unix())
}

// InvalidateAllSocial expires every cached social profile for the viewer.
func (c *Cache) InvalidateAllSocial() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	c.store.StampPrefixExpiry(store.TableSocial, c.current+":", c.now().Unix())
	c.logger.Info("invalidated social cache")
}

// === Milestones & friends ===

func (c *Cache) SaveMilestones(ms []domain.Milestone) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TableMilestones, c.current, ms, milestonesTTL, 0)
}

func (c *Cache) Milestones() ([]domain.Milestone, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil, false
	}
	return getRecord[[]domain.Milestone](c, store.TableMilestones, c.current, false)
}

func (c *Cache) SaveFriends(fs []domain.Friend) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return
	}
	putRecord(c, store.TableFriends, c.current, fs, friendsTTL, 0)
}

func (c *Cache) Friends() ([]domain.Friend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return nil, false
	}
	return getRecord[[]domain.Friend](c, store.TableFriends, c.current, false)
}
