package scorables

import (
	"github.com/KirbyMcKenzie/BotBuilder-V3/match"
)

// CompareMatches is the Comparator for scores that are match
// results.
//
// The ordering is "less is better" with key (not success, -length):
// an unsuccessful match sorts after any successful one, and among
// successful matches the longer full match sorts first.  Exact
// length ties fall through to the fold's input-order tie-break.
//
// A score that is not a *match.Result at all is treated like an
// unsuccessful match.
func CompareMatches(a, b interface{}) int {
	l, r := asResult(a), asResult(b)

	lf, rf := failKey(l), failKey(r)
	if lf != rf {
		return lf - rf
	}
	if lf == 1 {
		// Both failed; nothing else to compare.
		return 0
	}

	// Longer is better, so ascending order is by negated length.
	return r.Length() - l.Length()
}

func asResult(x interface{}) *match.Result {
	if r, is := x.(*match.Result); is {
		return r
	}
	return nil
}

func failKey(r *match.Result) int {
	if r == nil || !r.Success {
		return 1
	}
	return 0
}
