// Package report prints relative residual rows as terminal tables, shading
// alternate event blocks so picks of one earthquake read together.
package report
