// Package steghunt provides the command-line interface for the steghunt tool.
// It configures the mode subcommands (seed, crack, seedcrack) and helpers,
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/steghunt/steghunt/cmd/steghunt"
//	func main() { steghunt.Execute() }
package steghunt
