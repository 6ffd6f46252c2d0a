// Package main hosts the furymod CLI entrypoint and command graph.
//
// The Cobra-based command tree exposes the mod installer, sound archive
// inspection and repacking, hex patch checking, the install history ledger,
// and configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
