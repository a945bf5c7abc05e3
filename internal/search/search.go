// Package search runs purely local fuzzy matching over cached entries; no
// network is involved, so it works offline on whatever the cache holds.
package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/resonatefm/resonate/internal/domain"
	"github.com/sahilm/fuzzy"
)

// SongMatch is one history entry matched by a query, with the matched
// character positions for highlighting.
type SongMatch struct {
	Play           domain.SongPlay
	Score          int
	MatchedIndexes []int
}

// Songs matches the query against cached plays by "title artist" and returns
// the results best first.
func Songs(query string, plays []domain.SongPlay) []SongMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	haystack := make([]string, len(plays))
	for i, p := range plays {
		haystack[i] = p.Name + " " + p.ArtistLine()
	}

	matches := fuzzy.Find(query, haystack)
	out := make([]SongMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, SongMatch{
			Play:           plays[m.Index],
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
	}
	return out
}

// Friends filters the cached friends list by username, accent- and
// case-insensitive, closest match first.
func Friends(query string, friends []domain.Friend) []domain.Friend {
	query = strings.TrimSpace(query)
	if query == "" {
		return friends
	}

	names := make([]string, len(friends))
	for i, f := range friends {
		names[i] = f.Username
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	out := make([]domain.Friend, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, friends[r.OriginalIndex])
	}
	return out
}
