package api

// Wire DTOs for the resonate backend. Kept separate from domain entities so
// server-side field churn stays inside this package.

type profileDTO struct {
	Username     string `json:"username"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url"`
	TotalPlays   int    `json:"total_plays"`
	TotalMinutes int    `json:"total_minutes"`
	UpdatedAt    int64  `json:"updated_at"`
}

type songPlayDTO struct {
	ListenedAt  int64    `json:"listened_at"`
	TrackID     string   `json:"track_id"`
	AlbumID     string   `json:"album_id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	ArtURL      string   `json:"art_url"`
	DurationMS  int      `json:"duration_ms"`
	ExternalURL string   `json:"external_url"`
}

type historyResponse struct {
	Items []songPlayDTO `json:"items"`
}

type hourlyPlaysResponse struct {
	Hour    int   `json:"hour"`
	Minutes []int `json:"minutes"`
}

type dayCountDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type dailyPlaysResponse struct {
	Days []dayCountDTO `json:"days"`
}

type discoveryDTO struct {
	TrackID     string `json:"track_id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ArtURL      string `json:"art_url"`
	FirstListen int64  `json:"first_listen"`
}

type discoveriesResponse struct {
	Items []discoveryDTO `json:"items"`
}

type weeklyComparisonDTO struct {
	ThisWeekMinutes int     `json:"this_week_minutes"`
	LastWeekMinutes int     `json:"last_week_minutes"`
	DeltaPercent    float64 `json:"delta_percent"`
}

type pinDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	ArtURL string `json:"art_url"`
}

type pinDetailDTO struct {
	Name        string `json:"name"`
	Subtitle    string `json:"subtitle"`
	ArtURL      string `json:"art_url"`
	ExternalURL string `json:"external_url"`
}

type pinsDTO struct {
	Tracks  []pinDTO `json:"tracks"`
	Albums  []pinDTO `json:"albums"`
	Artists []pinDTO `json:"artists"`

	TrackDetails  map[string]pinDetailDTO `json:"track_details"`
	AlbumDetails  map[string]pinDetailDTO `json:"album_details"`
	ArtistDetails map[string]pinDetailDTO `json:"artist_details"`
}

type socialProfileDTO struct {
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	Bio       string     `json:"bio"`
	AvatarURL string     `json:"avatar_url"`
	Profile   profileDTO `json:"profile"`
}

type milestoneDTO struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Label     string `json:"label"`
	ReachedAt int64  `json:"reached_at"`
}

type milestonesResponse struct {
	Items []milestoneDTO `json:"items"`
}

type nowPlayingDTO struct {
	TrackID   string `json:"track_id"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	ArtURL    string `json:"art_url"`
	StartedAt int64  `json:"started_at"`
}

type friendDTO struct {
	UserID    string         `json:"user_id"`
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url"`
	Current   *nowPlayingDTO `json:"current,omitempty"`
}

type friendsResponse struct {
	Items []friendDTO `json:"items"`
}
