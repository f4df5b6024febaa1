package pipeline

import (
	"testing"

	"github.com/desertthunder/threadlist/internal/services"
)

func TestDedupe(t *testing.T) {
	track := func(id string) *services.Track {
		return &services.Track{ID: id, Name: "track " + id, Artist: "artist"}
	}

	t.Run("Keeps First Occurrence Order", func(t *testing.T) {
		in := []*services.Track{track("A"), track("B"), track("A"), track("C"), track("B")}
		got := Dedupe(in)

		want := []string{"A", "B", "C"}
		if len(got) != len(want) {
			t.Fatalf("expected %d tracks, got %d", len(want), len(got))
		}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
			}
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		if got := Dedupe(nil); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})

	t.Run("No Duplicates", func(t *testing.T) {
		in := []*services.Track{track("A"), track("B")}
		if got := Dedupe(in); len(got) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(got))
		}
	})
}
