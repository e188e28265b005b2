package sequtil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplement(t *testing.T) {
	assert.Equal(t, byte('T'), Complement('A'))
	assert.Equal(t, byte('A'), Complement('T'))
	assert.Equal(t, byte('G'), Complement('C'))
	assert.Equal(t, byte('C'), Complement('G'))
	assert.Equal(t, byte('N'), Complement('X'))
	assert.Equal(t, byte('n'), Complement('n'))
}

func TestReverseComplementInto(t *testing.T) {
	dst := make([]byte, 4)
	ReverseComplementInto(dst, []byte("ACGT"))
	assert.Equal(t, "ACGT", string(dst))

	dst2 := make([]byte, 6)
	ReverseComplementInto(dst2, []byte("AACCGG"))
	assert.Equal(t, "CCGGTT", string(dst2))
}

func TestReverseComplementIntoPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		ReverseComplementInto(make([]byte, 3), []byte("ACGT"))
	})
}

func TestReverseComplementInplace(t *testing.T) {
	seq := []byte("AACCGGTT")
	ReverseComplementInplace(seq)
	assert.Equal(t, "AACCGGTT", string(seq))

	seq2 := []byte("ACGTA")
	ReverseComplementInplace(seq2)
	assert.Equal(t, "TACGT", string(seq2))
}
