// Package config loads, normalizes, and validates furymod configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FURYMOD_GAME_EXE. The Config type centralizes every knob the installer and
// CLI need, so the mods folder, game executable, working directories, and
// external encoder binaries are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
