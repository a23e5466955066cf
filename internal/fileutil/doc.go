// Package fileutil holds filesystem helpers shared by the output sinks: an
// advisory directory lock and atomic file replacement.
package fileutil
