package service

import (
	"context"

	"github.com/resonatefm/resonate/internal/domain"
	"github.com/resonatefm/resonate/internal/fetch"
)

// UserProfile loads another user's profile as seen by the current viewer,
// cache first. Entries are keyed per viewer+subject pair with a short TTL.
func (s *Service) UserProfile(ctx context.Context, subjectID string, force bool, apply func(domain.SocialProfile)) error {
	err := fetch.Do(ctx, force, fetch.Single[domain.SocialProfile]{
		Read: func() (domain.SocialProfile, bool) {
			return s.cache.SocialProfile(subjectID)
		},
		Fetch: func(ctx context.Context) (domain.SocialProfile, error) {
			return s.client.GetUserProfile(ctx, subjectID)
		},
		Apply: apply,
		Write: s.cache.SaveSocialProfile,
		Key:   "social:" + subjectID,
		Group: &s.flights,
	})
	return s.report("user profile", err)
}

// InvalidateSocial expires one subject's cached profile, e.g. after a follow
// state change makes the cached copy misleading.
func (s *Service) InvalidateSocial(subjectID string) {
	s.cache.InvalidateSocialProfile(subjectID)
}

// InvalidateAllSocial expires every cached social profile for the viewer.
func (s *Service) InvalidateAllSocial() {
	s.cache.InvalidateAllSocial()
}
