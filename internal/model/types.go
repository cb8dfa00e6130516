package model

import (
	"fmt"
	"strings"
)

// EnvState represents the lifecycle state of the virtual environment.
// The state transitions are:
//
//	Missing → (setup) → Ready → (clean) → Missing
//
// The activation script inside the venv directory is the sole signal
// that setup completed; its presence defines Ready.
type EnvState string

const (
	// StateMissing indicates the virtual environment has not been created,
	// or its activation script has been deleted. Setup must run before
	// the bot can be launched.
	StateMissing EnvState = "missing"

	// StateReady indicates the virtual environment exists on disk and
	// the bot can be launched. Ready does not guarantee the installed
	// package set matches the manifest — setup is re-runnable to refresh it.
	StateReady EnvState = "ready"
)

// String returns the string representation of EnvState.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands.
func (s EnvState) String() string {
	return string(s)
}

// IsValid checks whether the EnvState value is one of the
// predefined valid states.
func (s EnvState) IsValid() bool {
	switch s {
	case StateMissing, StateReady:
		return true
	default:
		return false
	}
}

// ParseEnvState converts a string to an EnvState.
// Returns an error if the string does not match any valid state.
func ParseEnvState(s string) (EnvState, error) {
	state := EnvState(strings.ToLower(s))
	if !state.IsValid() {
		return "", fmt.Errorf("invalid environment state: %q (valid: missing, ready)", s)
	}
	return state, nil
}

// ResolutionState represents the interpreter discovery state machine.
// Discovery walks an ordered list of candidate invocations; the machine
// moves from Unresolved to either Resolved (first candidate that answers
// a version probe) or Failed (all candidates exhausted).
type ResolutionState string

const (
	// ResolutionUnresolved is the initial state, before any candidate
	// has been probed.
	ResolutionUnresolved ResolutionState = "unresolved"

	// ResolutionResolved indicates a working Python 3 interpreter was found.
	ResolutionResolved ResolutionState = "resolved"

	// ResolutionFailed indicates every candidate was probed and none
	// produced a usable interpreter.
	ResolutionFailed ResolutionState = "failed"
)

// String returns the string representation of ResolutionState.
func (s ResolutionState) String() string {
	return string(s)
}

// IsValid checks whether the ResolutionState value is one of the
// predefined valid states.
func (s ResolutionState) IsValid() bool {
	switch s {
	case ResolutionUnresolved, ResolutionResolved, ResolutionFailed:
		return true
	default:
		return false
	}
}

// Interpreter describes a resolved Python interpreter invocation.
//
// Command is an argv prefix rather than a bare executable path because
// some launchers require extra arguments (e.g., the Windows launcher is
// invoked as "py -3"). Callers append their own arguments to Command.
type Interpreter struct {
	// Command is the argv prefix used to invoke the interpreter
	// (e.g., ["python3"] or ["py", "-3"]).
	Command []string `json:"command"`

	// Version is the version string reported by the interpreter,
	// without the "Python " prefix (e.g., "3.11.4").
	Version string `json:"version"`

	// Major and Minor are the parsed leading version components.
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// String returns a human-readable representation of the interpreter,
// e.g. `py -3 (Python 3.11.4)`.
func (i *Interpreter) String() string {
	return fmt.Sprintf("%s (Python %s)", strings.Join(i.Command, " "), i.Version)
}

// PackageInfo holds name and version for a single installed package,
// as reported by `pip list --format=json` inside the venv.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ExitCode defines standard CLI exit codes for the provisioning and
// launch commands. These codes allow scripts and CI systems to
// programmatically determine the outcome of a command.
//
// The run command is special: when the bot itself exits non-zero, its
// exit code is passed through verbatim rather than mapped to one of
// these constants.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitPythonNotFound indicates no usable Python 3 interpreter was
	// found among the configured candidates.
	ExitPythonNotFound ExitCode = 2

	// ExitVenvCreateFailed indicates `python -m venv` failed to
	// materialize the virtual environment.
	ExitVenvCreateFailed ExitCode = 3

	// ExitPipUpgradeFailed indicates the in-venv pip self-upgrade failed.
	ExitPipUpgradeFailed ExitCode = 4

	// ExitManifestMissing indicates the requirements manifest file
	// does not exist.
	ExitManifestMissing ExitCode = 5

	// ExitInstallFailed indicates dependency installation from the
	// manifest failed.
	ExitInstallFailed ExitCode = 6

	// ExitEnvMissing indicates the virtual environment does not exist
	// and the requested command needs it (run, clean).
	ExitEnvMissing ExitCode = 7

	// ExitUserCancelled indicates the user declined an interactive prompt.
	ExitUserCancelled ExitCode = 8
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
