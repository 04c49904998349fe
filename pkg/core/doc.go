// Package core provides a small, stable facade over steghunt's internal
// engine for external integrations.
//
// Example:
//
//	cfg := core.Config{Root: "./loot", Mode: core.ModeSeed, Recursive: true}
//	res, err := core.Hunt(ctx, cfg, core.Options{})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
