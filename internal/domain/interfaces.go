package domain

import "context"

// Cache is the single choke-point for local reads and writes. All operations
// implicitly scope to the current account. Gets enforce TTL: an expired record
// reads as absent and its stored payload is cleared. Persistence failures are
// swallowed and degrade to a miss; no Cache method returns an error.
type Cache interface {
	// Account lifecycle
	SetCurrentUser(id, username, email string)
	CurrentUser() (Account, bool)
	MarkSynced()
	ClearCurrentUserData()
	ClearAllData()

	// Profile
	SaveProfile(p Profile)
	Profile() (Profile, bool)

	// Song history (accumulating, keyed by account + listened-at)
	SaveSongPlays(plays []SongPlay)
	SongHistory() []SongPlay

	// Stats sub-blobs, each independently expired
	SaveHourlyPlays(minutes []int)
	HourlyPlays() ([]int, bool)
	SaveDailyPlays(days []DayCount)
	DailyPlays() ([]DayCount, bool)
	SaveDiscoveries(ds []Discovery)
	Discoveries() ([]Discovery, bool)
	SaveWeeklyComparison(w WeeklyComparison)
	WeeklyComparison() (WeeklyComparison, bool)
	InvalidateStats()

	// Pins (wholesale replace, no automatic expiry)
	SavePins(p Pins)
	Pins() (Pins, bool)

	// Social profiles, keyed by viewer + subject
	SaveSocialProfile(p SocialProfile)
	SocialProfile(subjectID string) (SocialProfile, bool)
	InvalidateSocialProfile(subjectID string)
	InvalidateAllSocial()

	// Milestones and friends (TTL'd wholesale blobs)
	SaveMilestones(ms []Milestone)
	Milestones() ([]Milestone, bool)
	SaveFriends(fs []Friend)
	Friends() ([]Friend, bool)
}

// API is the authenticated remote client consumed by the sync services.
// Every method returns the closed error taxonomy via *Error values.
type API interface {
	GetProfile(ctx context.Context) (Profile, error)
	GetUserProfile(ctx context.Context, subjectID string) (SocialProfile, error)
	GetFriends(ctx context.Context) ([]Friend, error)
	GetMilestones(ctx context.Context) ([]Milestone, error)

	GetPins(ctx context.Context) (Pins, error)
	SavePins(ctx context.Context, p Pins) error

	GetDailyPlays(ctx context.Context) ([]DayCount, error)
	GetDiscoveries(ctx context.Context) ([]Discovery, error)
	GetWeeklyComparison(ctx context.Context) (WeeklyComparison, error)

	// Music-platform backed calls; these run the token refresh-retry protocol.
	GetSongHistory(ctx context.Context, after int64) ([]SongPlay, error)
	GetHourlyPlays(ctx context.Context) ([]int, error)
	GetNowPlaying(ctx context.Context) (*NowPlaying, error)
}
