// Package analysis runs the relative residual pipeline for reference/target
// pairs.
//
// Prepare applies the table-wide filter stages once. Analyze then narrows the
// table for one pair, broadcasts the reference residual and returns the
// target rows with relative residuals. Runner loops over pairs, skipping
// those with nothing to show, and forwards each Result to its Sinks (plot
// files, residual tables, the results archive, Parquet export, metrics).
package analysis
