// Package export writes relative residual rows to Parquet files for
// downstream analysis tools.
package export
