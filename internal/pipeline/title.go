package pipeline

import "strings"

// stopWords are filler words dropped when deriving a playlist name from a
// thread title, so "What are your favorite songs about driving?" becomes
// "favorite songs driving".
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {},
	"an": {}, "and": {}, "any": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"could": {}, "did": {}, "do": {}, "does": {}, "doing": {},
	"down": {}, "during": {}, "each": {}, "few": {}, "for": {},
	"from": {}, "further": {}, "had": {}, "has": {}, "have": {},
	"having": {}, "he": {}, "her": {}, "here": {}, "hers": {},
	"him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "just": {}, "me": {},
	"more": {}, "most": {}, "my": {}, "no": {}, "nor": {}, "not": {},
	"now": {}, "of": {}, "off": {}, "on": {}, "once": {}, "only": {},
	"or": {}, "other": {}, "our": {}, "ours": {}, "out": {},
	"over": {}, "own": {}, "r": {}, "same": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "theirs": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"those": {}, "through": {}, "to": {}, "too": {}, "under": {},
	"until": {}, "up": {}, "very": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {}, "yours": {},
}

// PlaylistName derives a playlist name from a thread title: lowercased,
// question marks removed, stopwords dropped. Falls back to the lowered
// title when filtering would leave nothing.
func PlaylistName(title string) string {
	lowered := strings.ReplaceAll(strings.ToLower(title), "?", "")

	var kept []string
	for _, word := range strings.Fields(lowered) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return strings.TrimSpace(lowered)
	}
	return strings.Join(kept, " ")
}
