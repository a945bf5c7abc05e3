package api

import "github.com/resonatefm/resonate/internal/domain"

func mapProfile(d profileDTO) domain.Profile {
	return domain.Profile{
		Username:     d.Username,
		Bio:          d.Bio,
		AvatarURL:    d.AvatarURL,
		TotalPlays:   d.TotalPlays,
		TotalMinutes: d.TotalMinutes,
		UpdatedAt:    d.UpdatedAt,
	}
}

func mapSongPlays(items []songPlayDTO) []domain.SongPlay {
	plays := make([]domain.SongPlay, 0, len(items))
	for _, d := range items {
		plays = append(plays, domain.SongPlay{
			ListenedAt:  d.ListenedAt,
			TrackID:     d.TrackID,
			AlbumID:     d.AlbumID,
			Name:        d.Name,
			Artists:     d.Artists,
			ArtURL:      d.ArtURL,
			DurationMS:  d.DurationMS,
			ExternalURL: d.ExternalURL,
		})
	}
	return plays
}

func mapDayCounts(items []dayCountDTO) []domain.DayCount {
	days := make([]domain.DayCount, 0, len(items))
	for _, d := range items {
		days = append(days, domain.DayCount{Date: d.Date, Count: d.Count})
	}
	return days
}

func mapDiscoveries(items []discoveryDTO) []domain.Discovery {
	ds := make([]domain.Discovery, 0, len(items))
	for _, d := range items {
		ds = append(ds, domain.Discovery{
			TrackID:     d.TrackID,
			Name:        d.Name,
			Artist:      d.Artist,
			ArtURL:      d.ArtURL,
			FirstListen: d.FirstListen,
		})
	}
	return ds
}

func mapPins(items []pinDTO) []domain.Pin {
	pins := make([]domain.Pin, 0, len(items))
	for _, d := range items {
		pins = append(pins, domain.Pin{ID: d.ID, Name: d.Name, ArtURL: d.ArtURL})
	}
	return pins
}

func mapPinDetails(details map[string]pinDetailDTO) map[string]domain.PinDetail {
	if details == nil {
		return nil
	}
	out := make(map[string]domain.PinDetail, len(details))
	for id, d := range details {
		out[id] = domain.PinDetail{
			Name:        d.Name,
			Subtitle:    d.Subtitle,
			ArtURL:      d.ArtURL,
			ExternalURL: d.ExternalURL,
		}
	}
	return out
}

func mapPinSet(d pinsDTO) domain.Pins {
	return domain.Pins{
		Tracks:        mapPins(d.Tracks),
		Albums:        mapPins(d.Albums),
		Artists:       mapPins(d.Artists),
		TrackDetails:  mapPinDetails(d.TrackDetails),
		AlbumDetails:  mapPinDetails(d.AlbumDetails),
		ArtistDetails: mapPinDetails(d.ArtistDetails),
	}
}

func pinSetToDTO(p domain.Pins) pinsDTO {
	toPins := func(pins []domain.Pin) []pinDTO {
		out := make([]pinDTO, 0, len(pins))
		for _, pin := range pins {
			out = append(out, pinDTO{ID: pin.ID, Name: pin.Name, ArtURL: pin.ArtURL})
		}
		return out
	}
	toDetails := func(details map[string]domain.PinDetail) map[string]pinDetailDTO {
		if details == nil {
			return nil
		}
		out := make(map[string]pinDetailDTO, len(details))
		for id, d := range details {
			out[id] = pinDetailDTO{
				Name:        d.Name,
				Subtitle:    d.Subtitle,
				ArtURL:      d.ArtURL,
				ExternalURL: d.ExternalURL,
			}
		}
		return out
	}
	return pinsDTO{
		Tracks:        toPins(p.Tracks),
		Albums:        toPins(p.Albums),
		Artists:       toPins(p.Artists),
		TrackDetails:  toDetails(p.TrackDetails),
		AlbumDetails:  toDetails(p.AlbumDetails),
		ArtistDetails: toDetails(p.ArtistDetails),
	}
}

func mapSocialProfile(d socialProfileDTO) domain.SocialProfile {
	return domain.SocialProfile{
		UserID:    d.UserID,
		Username:  d.Username,
		Bio:       d.Bio,
		AvatarURL: d.AvatarURL,
		Profile:   mapProfile(d.Profile),
	}
}

func mapMilestones(items []milestoneDTO) []domain.Milestone {
	ms := make([]domain.Milestone, 0, len(items))
	for _, d := range items {
		ms = append(ms, domain.Milestone{ID: d.ID, Kind: d.Kind, Label: d.Label, ReachedAt: d.ReachedAt})
	}
	return ms
}

func mapNowPlaying(d *nowPlayingDTO) *domain.NowPlaying {
	if d == nil {
		return nil
	}
	return &domain.NowPlaying{
		TrackID:   d.TrackID,
		Name:      d.Name,
		Artist:    d.Artist,
		ArtURL:    d.ArtURL,
		StartedAt: d.StartedAt,
	}
}

func mapFriends(items []friendDTO) []domain.Friend {
	fs := make([]domain.Friend, 0, len(items))
	for _, d := range items {
		fs = append(fs, domain.Friend{
			UserID:    d.UserID,
			Username:  d.Username,
			AvatarURL: d.AvatarURL,
			Current:   mapNowPlaying(d.Current),
		})
	}
	return fs
}
