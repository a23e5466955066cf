// Package harvest merges per-source pick tables into a single ensemble
// table.
//
// A coordinator lists the input files, splits them deterministically across
// a fixed number of ranks and hands each rank its share. Ranks run as
// goroutines; their outputs are gathered in rank order so the merged table
// is reproducible. There is no work stealing and no retry.
package harvest
