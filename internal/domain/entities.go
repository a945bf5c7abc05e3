package domain

import (
	"fmt"
	"time"
)

// Account is the locally mirrored identity of the logged-in user. Exactly one
// account may be current on a device at a time; every other cached entity is
// owned, directly or transitively, by an account.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	LastSyncedAt int64  `json:"lastSyncedAt"` // Unix seconds of last full sync
}

// Profile is the user's own profile plus aggregate listening totals.
type Profile struct {
	Username     string `json:"username"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatarUrl"`
	TotalPlays   int    `json:"totalPlays"`
	TotalMinutes int    `json:"totalMinutes"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// SongPlay is one entry in the listening history. The listened-at timestamp
// forms the immutable half of its composite identity (account + timestamp);
// name and art may be corrected by later server responses.
type SongPlay struct {
	ListenedAt  int64    `json:"listenedAt"` // Unix seconds, key field
	TrackID     string   `json:"trackId"`
	AlbumID     string   `json:"albumId"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ArtURL      string   `json:"artUrl"`
	DurationMS  int      `json:"durationMs"`
	ExternalURL string   `json:"externalUrl"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// ArtistLine renders the artist list for display.
func (p SongPlay) ArtistLine() string {
	switch len(p.Artists) {
	case 0:
		return ""
	case 1:
		return p.Artists[0]
	default:
		line := p.Artists[0]
		for _, a := range p.Artists[1:] {
			line = fmt.Sprintf("%s, %s", line, a)
		}
		return line
	}
}

// FormattedDuration returns the track length as m:ss.
func (p SongPlay) FormattedDuration() string {
	d := time.Duration(p.DurationMS) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// DayCount is one day's play total in the daily-plays stat.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Discovery is a track first heard recently.
type Discovery struct {
	TrackID     string `json:"trackId"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ArtURL      string `json:"artUrl"`
	FirstListen int64  `json:"firstListen"`
}

// WeeklyComparison compares this week's listening minutes to last week's.
type WeeklyComparison struct {
	ThisWeekMinutes int     `json:"thisWeekMinutes"`
	LastWeekMinutes int     `json:"lastWeekMinutes"`
	DeltaPercent    float64 `json:"deltaPercent"`
}

// Pin is a track, album, or artist the user pinned to their profile.
type Pin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ArtURL string `json:"artUrl"`
}

// PinDetail is the expanded lookup record behind a pin.
type PinDetail struct {
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	ArtURL      string `json:"artUrl"`
	ExternalURL string `json:"externalUrl"`
}

// Pins holds the three pin lists plus their detail lookup maps. Saved
// wholesale: every save replaces the previous value entirely.
type Pins struct {
	Tracks  []Pin `json:"tracks"`
	Albums  []Pin `json:"albums"`
	Artists []Pin `json:"artists"`

	TrackDetails  map[string]PinDetail `json:"trackDetails"`
	AlbumDetails  map[string]PinDetail `json:"albumDetails"`
	ArtistDetails map[string]PinDetail `json:"artistDetails"`
}

// IsEmpty reports whether no pins of any kind are set.
func (p Pins) IsEmpty() bool {
	return len(p.Tracks) == 0 && len(p.Albums) == 0 && len(p.Artists) == 0
}

// SocialProfile is another user's profile as seen by the current viewer.
// Cached per viewer+subject pair with a short TTL.
type SocialProfile struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Bio       string  `json:"bio"`
	AvatarURL string  `json:"avatarUrl"`
	Profile   Profile `json:"profile"` // full profile payload
}

// Milestone marks a listening achievement (e.g. 10,000th play).
type Milestone struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	ReachedAt int64  `json:"reachedAt"`
}

// NowPlaying is the track a friend is currently listening to.
type NowPlaying struct {
	TrackID   string `json:"trackId"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	ArtURL    string `json:"artUrl"`
	StartedAt int64  `json:"startedAt"`
}

// Friend is one entry in the friends list.
type Friend struct {
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	AvatarURL string      `json:"avatarUrl"`
	Current   *NowPlaying `json:"current,omitempty"`
}
