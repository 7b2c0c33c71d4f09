package errs

import "github.com/agnivade/levenshtein"

// Suggest returns the candidate string closest to key by edit distance,
// used to enrich UnresolvedStruct/UnresolvedCall/UnknownLinkTarget messages
// with a "did you mean" hint. Construction still fails fatally either way
// (spec.md §7 policy is unchanged); this only makes the failure easier for
// a human to act on. Returns "" if candidates is empty.
func Suggest(key string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(key, c)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
