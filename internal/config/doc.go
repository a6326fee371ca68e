// Package config loads the portrait settings file.
//
// Settings are TOML, read from ~/.config/portrait/config.toml or
// ./portrait.toml. Missing files yield defaults. Values are normalized
// (paths expanded, enums lowercased) and validated before use.
package config
