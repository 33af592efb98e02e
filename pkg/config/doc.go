// Package config handles configuration management for e1epack.
// It layers the embedded defaults, the project's e1epack.toml and
// E1EPACK_* environment variables, in that order.
package config
