package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/resonatefm/resonate/internal/domain"
)

// GetProfile returns the current user's own profile.
func (c *Client) GetProfile(ctx context.Context) (domain.Profile, error) {
	var dto profileDTO
	if err := c.do(ctx, http.MethodGet, "/v1/me/profile", nil, nil, &dto, ""); err != nil {
		return domain.Profile{}, err
	}
	return mapProfile(dto), nil
}

// GetUserProfile returns another user's profile as seen by the viewer.
func (c *Client) GetUserProfile(ctx context.Context, subjectID string) (domain.SocialProfile, error) {
	path := fmt.Sprintf("/v1/users/%s/profile", url.PathEscape(subjectID))
	var dto socialProfileDTO
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &dto, ""); err != nil {
		return domain.SocialProfile{}, err
	}
	return mapSocialProfile(dto), nil
}

// GetFriends returns the friends list with each friend's current track.
func (c *Client) GetFriends(ctx context.Context) ([]domain.Friend, error) {
	var resp friendsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me/friends", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return mapFriends(resp.Items), nil
}

// GetMilestones returns the current user's listening milestones.
func (c *Client) GetMilestones(ctx context.Context) ([]domain.Milestone, error) {
	var resp milestonesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me/milestones", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return mapMilestones(resp.Items), nil
}

// GetPins returns the current user's pin set.
func (c *Client) GetPins(ctx context.Context) (domain.Pins, error) {
	var dto pinsDTO
	if err := c.do(ctx, http.MethodGet, "/v1/me/pins", nil, nil, &dto, ""); err != nil {
		return domain.Pins{}, err
	}
	return mapPinSet(dto), nil
}

// SavePins replaces the user's pin set server-side.
func (c *Client) SavePins(ctx context.Context, p domain.Pins) error {
	return c.do(ctx, http.MethodPut, "/v1/me/pins", nil, pinSetToDTO(p), nil, "")
}

// GetDailyPlays returns play counts per day.
func (c *Client) GetDailyPlays(ctx context.Context) ([]domain.DayCount, error) {
	var resp dailyPlaysResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me/stats/daily", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return mapDayCounts(resp.Days), nil
}

// GetDiscoveries returns recently discovered tracks.
func (c *Client) GetDiscoveries(ctx context.Context) ([]domain.Discovery, error) {
	var resp discoveriesResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me/stats/discoveries", nil, nil, &resp, ""); err != nil {
		return nil, err
	}
	return mapDiscoveries(resp.Items), nil
}

// GetWeeklyComparison returns this week's listening minutes against last week's.
func (c *Client) GetWeeklyComparison(ctx context.Context) (domain.WeeklyComparison, error) {
	var dto weeklyComparisonDTO
	if err := c.do(ctx, http.MethodGet, "/v1/me/stats/weekly", nil, nil, &dto, ""); err != nil {
		return domain.WeeklyComparison{}, err
	}
	return domain.WeeklyComparison{
		ThisWeekMinutes: dto.ThisWeekMinutes,
		LastWeekMinutes: dto.LastWeekMinutes,
		DeltaPercent:    dto.DeltaPercent,
	}, nil
}

// GetSongHistory returns plays after the given Unix timestamp. Backed by the
// music platform, so it runs the refresh-retry protocol.
func (c *Client) GetSongHistory(ctx context.Context, after int64) ([]domain.SongPlay, error) {
	query := url.Values{}
	if after > 0 {
		query.Set("after", strconv.FormatInt(after, 10))
	}
	var resp historyResponse
	if err := c.doPlatform(ctx, http.MethodGet, "/v1/me/history", query, &resp); err != nil {
		return nil, err
	}
	return mapSongPlays(resp.Items), nil
}

// GetHourlyPlays returns per-minute play counts for the current hour.
// Platform-backed.
func (c *Client) GetHourlyPlays(ctx context.Context) ([]int, error) {
	var resp hourlyPlaysResponse
	if err := c.doPlatform(ctx, http.MethodGet, "/v1/me/stats/hourly", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Minutes, nil
}

// GetNowPlaying returns the user's currently playing track, or nil when
// nothing is playing. Platform-backed.
func (c *Client) GetNowPlaying(ctx context.Context) (*domain.NowPlaying, error) {
	var dto *nowPlayingDTO
	if err := c.doPlatform(ctx, http.MethodGet, "/v1/me/now-playing", nil, &dto); err != nil {
		return nil, err
	}
	return mapNowPlaying(dto), nil
}
