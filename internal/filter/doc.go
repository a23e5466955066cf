// Package filter narrows pick tables to trusted channels, valid operating
// dates, the teleseismic window and adequate pick quality.
//
// Filters are composed from Predicate values and applied as named Stages so
// callers can report how many rows each step removed.
package filter
