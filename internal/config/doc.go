// Package config loads steghunt configuration from local and global YAML files
// and validates the resolved run settings. CLI code maps flags and files into
// engine configuration with CLI > local > global precedence.
package config
