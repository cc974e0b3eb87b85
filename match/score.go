package match

// NormalizedScore converts a successful Result into a quality number
// in [0,1]: the sum of the lengths of the capture groups (group 0,
// the whole match, is excluded) divided by the length of group 0.
//
// The caller is expected to use patterns whose group 0 covers the
// whole candidate text; otherwise the ratio is not meaningful.  This
// function does not (and cannot) enforce that.
//
// Calling NormalizedScore on an unsuccessful Result or on a Result
// whose whole match is empty is a contract violation, and this
// function panics rather than silently defaulting.
func NormalizedScore(r *Result) float64 {
	if r == nil || !r.Success {
		panic("match.NormalizedScore: unsuccessful result")
	}
	whole := r.Groups[0].Length
	if whole == 0 {
		panic("match.NormalizedScore: empty match")
	}
	sum := 0
	for i := 1; i < len(r.Groups); i++ {
		if g := &r.Groups[i]; g.Success {
			sum += g.Length
		}
	}
	return float64(sum) / float64(whole)
}
