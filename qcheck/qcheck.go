// Package qcheck implements C15: the 'N'-base tolerance check every read
// passes through before being accepted by the composite output.
//
// The scan runs right-to-left and exits as soon as the running count
// exceeds the configured limit, since that is the only outcome the caller
// needs (spec.md §4.15) — there's no reason to keep counting once the read
// is already rejected.
package qcheck

// Result is the outcome of Count.
type Result struct {
	// N is the number of 'n'/'N' bases found, capped at limit+1 once the
	// scan has already exceeded it (the exact count above the limit is
	// never needed).
	N int
	// Exceeded reports whether N is strictly greater than the configured
	// limit.
	Exceeded bool
}

// NullRead reports whether seq should be treated as "no read": nil, or a
// request for a read past the end of the reference (spec.md §4.15's
// OutOfRange case, surfaced to the caller as nil by RefSeq.Seq). An empty
// but non-nil slice is not a null read.
func NullRead(seq []byte) bool {
	return seq == nil
}

// Count scans seq right-to-left counting 'N'/'n' bases, stopping early once
// the count exceeds limit. limit <= 0 disables the check: Count always
// reports Exceeded == false without scanning.
func Count(seq []byte, limit int) Result {
	if limit <= 0 {
		return Result{}
	}
	n := 0
	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i] {
		case 'N', 'n':
			n++
			if n > limit {
				return Result{N: n, Exceeded: true}
			}
		}
	}
	return Result{N: n, Exceeded: false}
}
