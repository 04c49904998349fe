// Package engine finds carrier candidates under a directory and drives a
// stegseek Invoker over them according to the run's mode. This package is
// internal; external consumers should use the stable facade in pkg/core.
package engine
