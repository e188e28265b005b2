package interval

import "math"

// PosType is the type used to represent genomic coordinates throughout the
// output pipeline: fragment/read boundaries, coverage and density map keys,
// and wiggle/bedgraph positions.  int32 is wide enough for any chromosome
// this package will ever see, since that's what BAM itself is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// SearchPosTypes returns the index of the first element of the ascending
// slice a that is >= x, or len(a) if there is no such element.  It's
// sort.Search specialized to PosType; no other package of this module
// calls it.
func SearchPosTypes(a []PosType, x PosType) int {
	lo, hi := 0, len(a)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if a[mid] < x {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
