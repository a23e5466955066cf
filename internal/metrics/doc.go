// Package metrics records analysis batch counters in a Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics
