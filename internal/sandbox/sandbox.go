// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// SANDBOX: Subprocess lifecycle with a single guaranteed finalizer
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/jeranaias/costgate/internal/errs"
	"github.com/jeranaias/costgate/internal/runtime"
)

// =============================================================================
// TYPES
// =============================================================================

// DefaultExecTimeout bounds a single execution when no timeout is configured.
const DefaultExecTimeout = 120 * time.Second

// charsPerUnit mirrors the router's coarse text-to-unit proxy.
const charsPerUnit = 3

// Options tunes one execution.
type Options struct {
	// MaxOutputUnits truncates the returned output; zero means unlimited.
	// The runtime CLI exposes no output-length flag, so the bound is
	// applied to the captured output.
	MaxOutputUnits int

	// Temperature is accepted for interface compatibility and clamped to
	// [0, 2]. The runtime CLI exposes no sampling flags; the value is
	// recorded, not forwarded.
	Temperature float64
}

// Result is the outcome of one execution.
type Result struct {
	// Output is the captured model output, empty on failure.
	Output string `json:"output,omitempty"`

	// ErrorKind classifies the failure; KindUnknown on success.
	ErrorKind errs.Kind `json:"error_kind,omitempty"`

	// ExecutionTime is the wall-clock duration of the attempt.
	ExecutionTime time.Duration `json:"execution_time"`

	// TokensIn and TokensOut are coarse unit estimates of prompt and
	// output size.
	TokensIn  int  `json:"tokens_in"`
	TokensOut int  `json:"tokens_out"`
	Success   bool `json:"success"`
}

// ExecutionSink receives one record per completed or failed execution.
// Implemented by ledger.Ledger; optional.
type ExecutionSink interface {
	RecordExecution(providerID string, success bool, detail string, elapsed time.Duration)
}

// Sandbox runs allowlisted local models as bounded child processes.
// Concurrent Execute calls are independent: one process per call, no
// serialization or queueing.
type Sandbox struct {
	trustedPath string
	timeout     time.Duration
	ledger      ExecutionSink
}

// New creates a sandbox. trustedPath is the configured runtime binary
// location; timeout <= 0 uses DefaultExecTimeout; ledger may be nil.
func New(trustedPath string, timeout time.Duration, ledger ExecutionSink) *Sandbox {
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}
	return &Sandbox{trustedPath: trustedPath, timeout: timeout, ledger: ledger}
}

// =============================================================================
// EXECUTE
// =============================================================================

// Execute validates and runs one prompt against an allowlisted local model.
// Validation failures return before any process starts. The run is bounded
// by the sandbox timeout and by ctx; both cancellation paths share the
// terminate-then-reap finalizer.
func (s *Sandbox) Execute(ctx context.Context, providerID, prompt string, opts Options) (Result, error) {
	if err := validateProviderID(providerID); err != nil {
		return Result{ErrorKind: errs.KindValidation}, err
	}
	if err := validatePrompt(prompt); err != nil {
		return Result{ErrorKind: errs.KindValidation}, err
	}
	prompt = sanitizePrompt(prompt)

	binPath, err := runtime.FindExecutable(s.trustedPath)
	if err != nil {
		// The resolution detail (searched paths) stays internal.
		log.Printf("SANDBOX: runtime executable resolution failed: %v", err)
		return Result{ErrorKind: errs.KindExecutionFailure}, errs.ExecutionFailed("sandbox.execute")
	}

	opts = clampOptions(opts)
	start := time.Now()
	output, runErr := s.run(ctx, binPath, providerID, prompt)
	elapsed := time.Since(start)

	res := Result{
		ExecutionTime: elapsed,
		TokensIn:      unitEstimate(prompt),
	}

	switch {
	case runErr == nil:
		res.Output = truncateOutput(output, opts.MaxOutputUnits)
		res.TokensOut = unitEstimate(res.Output)
		res.Success = true
		s.record(providerID, true, "completed", elapsed)
		return res, nil
	case errs.IsTimeout(runErr):
		res.ErrorKind = errs.KindExecutionTimeout
		s.record(providerID, false, "timeout", elapsed)
		return res, runErr
	default:
		res.ErrorKind = errs.KindExecutionFailure
		s.record(providerID, false, "failure", elapsed)
		return res, runErr
	}
}

// =============================================================================
// PROCESS LIFECYCLE
// =============================================================================

// run starts the runtime child and waits for completion, timeout, or
// cancellation. The model id is the sole variable argument; the prompt is
// delivered over stdin only. Every exit path funnels through the same
// kill-group-then-reap sequence.
func (s *Sandbox) run(ctx context.Context, binPath, model, prompt string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Not CommandContext: the context's default kill targets the child
	// alone. The finalizer below kills the whole process group instead.
	cmd := exec.Command(binPath, "run", model)
	setProcAttrs(cmd)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		log.Printf("SANDBOX: start failed for %s: %v", model, err)
		return "", errs.ExecutionFailed("sandbox.execute")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case waitErr := <-done:
		if waitErr != nil {
			// Full diagnostic detail is internal-only. Callers get the
			// generic error; stderr and exit codes never leak.
			log.Printf("SANDBOX: %s exited with error: %v; stderr: %s",
				model, waitErr, strings.TrimSpace(stderr.String()))
			return "", errs.ExecutionFailed("sandbox.execute")
		}
		return stdout.String(), nil

	case <-runCtx.Done():
		// Identical finalizer for timeout and cancellation: kill the
		// process group, then block until Wait has reaped the child.
		killProcessGroup(cmd)
		<-done
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Printf("SANDBOX: %s terminated after %s timeout", model, s.timeout)
			return "", errs.Timeout("sandbox.execute", runCtx.Err())
		}
		log.Printf("SANDBOX: %s canceled by caller", model)
		return "", errs.Wrap(errs.KindExecutionFailure, "sandbox.execute", context.Canceled)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func clampOptions(opts Options) Options {
	if opts.MaxOutputUnits < 0 {
		opts.MaxOutputUnits = 0
	}
	if opts.Temperature < 0 {
		opts.Temperature = 0
	}
	if opts.Temperature > 2 {
		opts.Temperature = 2
	}
	return opts
}

func truncateOutput(output string, maxUnits int) string {
	if maxUnits <= 0 {
		return output
	}
	runes := []rune(output)
	if limit := maxUnits * charsPerUnit; len(runes) > limit {
		return string(runes[:limit])
	}
	return output
}

func unitEstimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + charsPerUnit - 1) / charsPerUnit
}

func (s *Sandbox) record(providerID string, success bool, detail string, elapsed time.Duration) {
	if s.ledger == nil {
		return
	}
	s.ledger.RecordExecution(providerID, success, detail, elapsed)
}
