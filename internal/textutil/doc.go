// Package textutil provides filename sanitization for generated outputs.
//
// Plot, export and parameter-record names embed network codes, station
// codes and free-form labels; these helpers keep them safe as path segments.
package textutil
