package python

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/planilhador/botctl/internal/model"
)

// probeFunc invokes an interpreter candidate with --version and returns
// the combined output. Injected so tests can simulate interpreters
// without any Python installed on the test machine.
//
// Combined output matters: Python 2 prints its version banner to stderr,
// and we want that banner so the resolver can reject 2.x explicitly.
type probeFunc func(ctx context.Context, argv []string) (string, error)

// Resolver walks an ordered list of interpreter candidates and returns
// the first one that answers a version probe with a Python 3 banner.
//
// The resolver is a small state machine: it starts Unresolved, and a call
// to Resolve moves it to Resolved or Failed. The state is retained so
// callers (status, doctor) can report the outcome without re-probing.
type Resolver struct {
	// candidates holds the parsed argv prefixes, in trial order.
	candidates [][]string

	// state tracks the discovery state machine.
	state model.ResolutionState

	// probe executes a version check for one candidate.
	probe probeFunc
}

// NewResolver creates a Resolver from whitespace-separated candidate
// strings (e.g., "py -3", "python3"). Blank entries are dropped.
func NewResolver(candidates []string) *Resolver {
	parsed := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		argv := strings.Fields(c)
		if len(argv) == 0 {
			continue
		}
		parsed = append(parsed, argv)
	}
	return &Resolver{
		candidates: parsed,
		state:      model.ResolutionUnresolved,
		probe:      runProbe,
	}
}

// State returns the current discovery state.
func (r *Resolver) State() model.ResolutionState {
	return r.state
}

// Resolve probes each candidate in order and returns the first usable
// Python 3 interpreter.
//
// A candidate is rejected (and the chain continues) when:
//   - the invocation fails entirely (binary not on PATH, launcher error)
//   - the output is not a recognizable "Python X.Y[.Z]" banner
//   - the banner reports a major version below 3
//
// When every candidate is rejected, the resolver enters the Failed state
// and returns a CLIError with ExitPythonNotFound telling the user to
// install Python 3 and ensure it is on PATH.
func (r *Resolver) Resolve(ctx context.Context) (*model.Interpreter, error) {
	if len(r.candidates) == 0 {
		r.state = model.ResolutionFailed
		return nil, model.NewCLIError(model.ExitPythonNotFound, "no python candidates configured")
	}

	for _, argv := range r.candidates {
		probeArgs := append(append([]string{}, argv...), "--version")
		out, err := r.probe(ctx, probeArgs)
		if err != nil {
			// Candidate not present or not runnable — try the next one.
			continue
		}

		version, major, minor, parseErr := ParseBanner(out)
		if parseErr != nil {
			continue
		}
		if major < 3 {
			// A working interpreter, but the wrong era. venv and the
			// bot both require Python 3, so keep walking the chain.
			continue
		}

		r.state = model.ResolutionResolved
		return &model.Interpreter{
			Command: argv,
			Version: version,
			Major:   major,
			Minor:   minor,
		}, nil
	}

	r.state = model.ResolutionFailed
	return nil, model.NewCLIError(model.ExitPythonNotFound,
		"no usable Python 3 interpreter found; install Python 3 and ensure it is on your PATH")
}

// ParseBanner extracts the version from a `python --version` banner.
//
// Accepted inputs look like "Python 3.11.4" with optional surrounding
// whitespace; some builds append vendor suffixes ("Python 3.11.4+"),
// which are tolerated by parsing only leading digits per component.
func ParseBanner(banner string) (version string, major, minor int, err error) {
	s := strings.TrimSpace(banner)
	const prefix = "Python "
	if !strings.HasPrefix(s, prefix) {
		return "", 0, 0, fmt.Errorf("unrecognized version banner: %q", banner)
	}

	fields := strings.Fields(strings.TrimPrefix(s, prefix))
	if len(fields) == 0 {
		return "", 0, 0, fmt.Errorf("version banner carries no version number: %q", banner)
	}

	version = fields[0]
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return "", 0, 0, fmt.Errorf("unrecognized version number: %q", version)
	}

	major, err = strconv.Atoi(leadingDigits(parts[0]))
	if err != nil {
		return "", 0, 0, fmt.Errorf("unrecognized major version in %q", version)
	}
	minor, err = strconv.Atoi(leadingDigits(parts[1]))
	if err != nil {
		return "", 0, 0, fmt.Errorf("unrecognized minor version in %q", version)
	}
	return version, major, minor, nil
}

// leadingDigits returns the leading run of ASCII digits in s.
// Returns s unchanged if it starts with a non-digit (Atoi will then fail
// with a useful error).
func leadingDigits(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			if i == 0 {
				return s
			}
			return s[:i]
		}
	}
	return s
}

// runProbe is the production probeFunc. It runs the candidate with a
// context so discovery respects cancellation, and captures combined
// output because Python 2 writes its banner to stderr.
func runProbe(ctx context.Context, argv []string) (string, error) {
	// #nosec G204 — argv comes from configuration, not remote input
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
