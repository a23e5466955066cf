// Package picks models seismic arrival picks and reads/writes the flat
// whitespace-delimited pick tables produced by the picking pipeline.
//
// A pick table has a header row naming its columns (the first is
// "#eventID"). Columns are located by name, so files with extra or reordered
// columns load fine as long as the analysis columns are present.
package picks
