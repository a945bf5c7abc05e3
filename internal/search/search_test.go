package search

import (
	"testing"

	"github.com/resonatefm/resonate/internal/domain"
)

func TestSongsMatchesTitleAndArtist(t *testing.T) {
	plays := []domain.SongPlay{
		{ListenedAt: 1, Name: "Blue Monday", Artists: []string{"New Order"}},
		{ListenedAt: 2, Name: "Bizarre Love Triangle", Artists: []string{"New Order"}},
		{ListenedAt: 3, Name: "Karma Police", Artists: []string{"Radiohead"}},
	}

	got := Songs("monday", plays)
	if len(got) != 1 || got[0].Play.Name != "Blue Monday" {
		t.Fatalf("got %+v, want Blue Monday", got)
	}
	if len(got[0].MatchedIndexes) == 0 {
		t.Error("expected matched character positions for highlighting")
	}

	// Artist names are part of the haystack.
	byArtist := Songs("radiohead", plays)
	if len(byArtist) != 1 || byArtist[0].Play.Name != "Karma Police" {
		t.Errorf("artist match failed: %+v", byArtist)
	}
}

func TestSongsEmptyQuery(t *testing.T) {
	plays := []domain.SongPlay{{Name: "x"}}
	if got := Songs("  ", plays); got != nil {
		t.Errorf("blank query should return nil, got %+v", got)
	}
}

func TestFriendsFilterAndRank(t *testing.T) {
	friends := []domain.Friend{
		{UserID: "1", Username: "grace"},
		{UserID: "2", Username: "graham"},
		{UserID: "3", Username: "ada"},
	}

	got := Friends("gra", friends)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	for _, f := range got {
		if f.Username == "ada" {
			t.Error("ada should not match gra")
		}
	}
}

func TestFriendsEmptyQueryReturnsAll(t *testing.T) {
	friends := []domain.Friend{{Username: "a"}, {Username: "b"}}
	if got := Friends("", friends); len(got) != 2 {
		t.Errorf("blank query should pass the list through, got %+v", got)
	}
}

func TestFriendsCaseInsensitive(t *testing.T) {
	friends := []domain.Friend{{Username: "Grace"}}
	if got := Friends("grace", friends); len(got) != 1 {
		t.Errorf("match should be case-insensitive, got %+v", got)
	}
}
