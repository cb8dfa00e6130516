// Package model defines the domain types and value objects for the
// botctl CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (EnvState, Interpreter, PackageInfo, etc.) are transient
// representations reconstructed from filesystem probes at runtime — the
// virtual environment directory is the only persistent state.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
