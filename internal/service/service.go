// Package service orchestrates the cache facade, the fetch algorithm, and
// the API client into per-domain sync operations — the layer screens call.
package service

import (
	"context"
	"log/slog"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/fetch"
	"golang.org/x/sync/singleflight"
)

// Service exposes one sync operation per cached domain. Identical concurrent
// fetches are coalesced through a shared singleflight group so two screens
// asking for the same data share one remote call.
type Service struct {
	cache   domain.Cache
	client  domain.API
	flights singleflight.Group
	logger  *slog.Logger
}

// New creates a sync service.
func New(cache domain.Cache, client domain.API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cache, client: client, logger: logger}
}

// report logs a sync failure. Cancelled requests are logged at debug and
// never surfaced; everything else is the caller's to show.
func (s *Service) report(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsCancelled(err) {
		s.logger.Debug("sync cancelled", "op", op)
		return err
	}
	s.logger.Error("sync failed", "op", op, "error", err)
	return err
}

// Profile loads the user's own profile, cache first.
func (s *Service) Profile(ctx context.Context, force bool, apply func(domain.Profile)) error {
	err := fetch.Do(ctx, force, fetch.Single[domain.Profile]{
		Read:  s.cache.Profile,
		Fetch: s.client.GetProfile,
		Apply: apply,
		Write: s.cache.SaveProfile,
		Key:   "profile",
		Group: &s.flights,
	})
	return s.report("profile", err)
}

// Pins loads the pin set, cache first. Pins never expire locally; force is
// the only way to bypass the cached copy.
func (s *Service) Pins(ctx context.Context, force bool, apply func(domain.Pins)) error {
	err := fetch.Do(ctx, force, fetch.Single[domain.Pins]{
		Read:  s.cache.Pins,
		Fetch: s.client.GetPins,
		Apply: apply,
		Write: s.cache.SavePins,
		Key:   "pins",
		Group: &s.flights,
	})
	return s.report("pins", err)
}

// SavePins pushes a new pin set to the server, then writes it through the
// cache only after the server accepted it.
func (s *Service) SavePins(ctx context.Context, p domain.Pins) error {
	if err := s.client.SavePins(ctx, p); err != nil {
		return s.report("save pins", err)
	}
	s.cache.SavePins(p)
	s.logger.Info("pins saved", "tracks", len(p.Tracks), "albums", len(p.Albums), "artists", len(p.Artists))
	return nil
}

// Friends loads the friends list, cache first.
func (s *Service) Friends(ctx context.Context, force bool, apply func([]domain.Friend)) error {
	err := fetch.DoSlice(ctx, force, fetch.Slice[domain.Friend]{
		Read: func() []domain.Friend {
			fs, _ := s.cache.Friends()
			return fs
		},
		Fetch: s.client.GetFriends,
		Apply: apply,
		Write: s.cache.SaveFriends,
		Key:   "friends",
		Group: &s.flights,
	})
	return s.report("friends", err)
}

// Milestones loads the milestones list, cache first.
func (s *Service) Milestones(ctx context.Context, force bool, apply func([]domain.Milestone)) error {
	err := fetch.DoSlice(ctx, force, fetch.Slice[domain.Milestone]{
		Read: func() []domain.Milestone {
			ms, _ := s.cache.Milestones()
			return ms
		},
		Fetch: s.client.GetMilestones,
		Apply: apply,
		Write: s.cache.SaveMilestones,
		Key:   "milestones",
		Group: &s.flights,
	})
	return s.report("milestones", err)
}

// Login records the authenticated account as current. Safe to call on every
// startup; an already-known account is left as is.
func (s *Service) Login(id, username, email string) {
	s.cache.SetCurrentUser(id, username, email)
	s.logger.Info("account current", "id", id, "username", username)
}

// Logout deletes the current account's cached data. Credential teardown is
// the caller's job; cascading the local mirror is ours.
func (s *Service) Logout() {
	s.cache.ClearCurrentUserData()
	s.logger.Info("logged out")
}
