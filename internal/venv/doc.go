// Package venv manages the Python virtual environment for botctl.
//
// All operations are performed via os/exec calls to the discovered
// interpreter and to the venv's own pip (always through `python -m pip`),
// rather than linking any Python tooling. This approach:
//   - Uses the exact same venv/pip behavior the user sees in a terminal
//   - Works with whichever Python 3 the resolver discovered
//   - Keeps the binary free of platform-specific interpreter bindings
//
// The Manager treats the venv's activation script as the existence
// marker, provides the activation environment transform applied to child
// processes, and inspects installed packages via pip's JSON output.
package venv
