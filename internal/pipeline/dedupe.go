package pipeline

import "github.com/desertthunder/threadlist/internal/services"

// Dedupe drops repeated tracks by catalog ID, keeping the first occurrence
// and preserving order.
func Dedupe(tracks []*services.Track) []*services.Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]*services.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
