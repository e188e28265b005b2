// Package sequtil provides the small amount of sequence manipulation the
// output pipeline needs: reverse-complementing the read drawn from a
// reverse-strand fragment before it is written to FASTQ/SAM.
//
// Adapted from the ASCII reverse-complement table in
// biosimd/revcomp_generic.go; the packed-nibble and amd64-asm variants in
// that package have no analog here, since this pipeline only ever handles
// plain ASCII base calls (see DESIGN.md).
package sequtil

// complementTable maps an ASCII base call to its complement.  Anything that
// isn't A/C/G/T (upper or lower case) complements to 'N', except lower-case
// 'n', which complements to itself.
var complementTable = [256]byte{}

func init() {
	for i := range complementTable {
		complementTable[i] = 'N'
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
	}
	for k, v := range pairs {
		complementTable[k] = v
	}
	complementTable['N'] = 'N'
	complementTable['n'] = 'n'
}

// Complement returns the complement of a single base call.
func Complement(base byte) byte {
	return complementTable[base]
}

// ReverseComplementInto writes the reverse complement of src into dst.
// len(dst) must equal len(src); it panics otherwise.
func ReverseComplementInto(dst, src []byte) {
	n := len(src)
	if len(dst) != n {
		panic("sequtil: ReverseComplementInto requires len(dst) == len(src)")
	}
	for i, j := 0, n-1; j >= 0; i, j = i+1, j-1 {
		dst[i] = complementTable[src[j]]
	}
}

// ReverseComplementInplace reverse-complements seq in place.
func ReverseComplementInplace(seq []byte) {
	n := len(seq)
	half := n >> 1
	for i, j := 0, n-1; i != half; i, j = i+1, j-1 {
		seq[i], seq[j] = complementTable[seq[j]], complementTable[seq[i]]
	}
	if n&1 == 1 {
		seq[half] = complementTable[seq[half]]
	}
}
