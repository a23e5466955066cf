// Package main hosts the clockdrift CLI.
//
// The Cobra command tree loads a pick table, runs the relative residual
// pipeline and hands each reference/target pair to the configured sinks:
// PNG plots or terminal tables, the SQLite archive, Parquet export and
// Prometheus textfile metrics. Auxiliary commands answer windowing
// questions, list significant events, harvest pick files and inspect the
// archive.
package main
