// Package stegseek drives the external stegseek binary for one candidate at a
// time. It locates the binary, builds the argument shapes for the seed and
// crack sub-operations, streams the tool's stderr while it runs and classifies
// each invocation from that diagnostic text alone; exit codes are ignored.
package stegseek
