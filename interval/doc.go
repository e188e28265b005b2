// Package interval defines the genomic position type shared by the
// coverage and density accumulators, and a binary-search helper over
// ascending slices of positions.
//
// It assumes every position fits in a PosType, which is currently defined as
// int32 since that's what BAM files are limited to.
package interval
