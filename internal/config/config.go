// Package config reads process-wide kernel selection flags from the environment.
//
// Values are read on every call, so tests can override them with t.Setenv.
// Consumers take a Flags snapshot and pass it along explicitly.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/tensorcore/internal/ops"
)

// Environment keys.
const (
	KeyBenchmarkKernel     = "BORN_BENCHMARK_KERNEL"
	KeyDeterministicKernel = "BORN_DETERMINISTIC_KERNEL"
	KeyComputeMode         = "BORN_COMPUTE_MODE"
)

// Var returns an environment variable stripped of leading/trailing quotes or spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a getter for a boolean variable. A set but
// unparsable value counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable defaulting to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

var (
	// BenchmarkKernel selects kernels by profiling instead of heuristics.
	BenchmarkKernel = Bool(KeyBenchmarkKernel)
	// DeterministicKernel restricts kernel selection to reproducible kernels.
	DeterministicKernel = Bool(KeyDeterministicKernel)
)

// ComputeMode returns the global compute mode override; "default" when unset.
func ComputeMode() ops.ComputeMode {
	s := Var(KeyComputeMode)
	mode, err := ops.ParseComputeMode(s)
	if err != nil {
		slog.Warn("invalid environment variable, using default", "key", KeyComputeMode, "value", s, "default", ops.ComputeDefault)
		return ops.ComputeDefault
	}
	return mode
}

// Flags is a snapshot of the kernel selection settings.
type Flags struct {
	Benchmark     bool
	Deterministic bool
	ComputeMode   ops.ComputeMode
}

// FromEnv snapshots the current environment.
func FromEnv() Flags {
	return Flags{
		Benchmark:     BenchmarkKernel(),
		Deterministic: DeterministicKernel(),
		ComputeMode:   ComputeMode(),
	}
}

// ResolveComputeMode returns the mode an operation actually runs with: a
// non-default global override wins over the per-call request.
func (f Flags) ResolveComputeMode(requested ops.ComputeMode) ops.ComputeMode {
	if f.ComputeMode != ops.ComputeDefault {
		return f.ComputeMode
	}
	return requested
}

// Strategy assembles the kernel selection strategy flags.
func (f Flags) Strategy() ops.Strategy {
	var s ops.Strategy
	if f.Benchmark {
		s |= ops.Profile
	} else {
		s |= ops.Heuristic
	}
	if f.Deterministic {
		s |= ops.Reproducible
	}
	return s
}

// Values returns the flags keyed by environment variable, for diagnostics.
func (f Flags) Values() map[string]string {
	return map[string]string{
		KeyBenchmarkKernel:     strconv.FormatBool(f.Benchmark),
		KeyDeterministicKernel: strconv.FormatBool(f.Deterministic),
		KeyComputeMode:         f.ComputeMode.String(),
	}
}
