// Package python implements Python interpreter discovery for botctl.
//
// Discovery is an ordered fallback chain: each configured candidate
// invocation ("py -3", "python3", "python") is probed with --version,
// and the first one that reports a Python 3 banner wins. The chain is
// modeled as a state machine with states unresolved, resolved, and
// failed (see model.ResolutionState).
//
// Probing shells out to the actual interpreter rather than inspecting
// PATH entries, because only a real invocation proves the candidate is
// runnable (the Windows Store "python" stub exists on PATH but exits
// with an error, and the py launcher is not a Python binary at all).
package python
