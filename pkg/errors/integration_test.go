package errors_test

import (
	"errors"
	"fmt"
	"testing"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// TestErrorWrappingCompatibility tests Go 1.13+ error wrapping with the
// custom types.
func TestErrorWrappingCompatibility(t *testing.T) {
	originalErr := psdrErrors.NewNotFittedError("LipschitzMatrix", "Bounds")

	wrappedErr := fmt.Errorf("bounding step failed: %w", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Errorf("errors.Is failed to identify wrapped error")
	}

	var notFittedErr *psdrErrors.NotFittedError
	if !errors.As(wrappedErr, &notFittedErr) {
		t.Errorf("errors.As failed to extract NotFittedError")
	}

	if notFittedErr.ModelName != "LipschitzMatrix" {
		t.Errorf("expected ModelName 'LipschitzMatrix', got '%s'", notFittedErr.ModelName)
	}
}

// TestCombinedErrorTypes tests mixing custom and standard errors.
func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("interior iteration diverged")

	customErr := psdrErrors.NewModelError("SDP.Solve", "augmented Lagrangian failed", stdErr)

	wrappedErr := fmt.Errorf("fit context: %w", customErr)

	if !errors.Is(wrappedErr, stdErr) {
		t.Errorf("failed to find standard error in chain")
	}

	var modelErr *psdrErrors.ModelError
	if !errors.As(wrappedErr, &modelErr) {
		t.Errorf("failed to extract ModelError")
	}

	if modelErr.Unwrap() != stdErr {
		t.Errorf("ModelError.Unwrap() didn't return expected error")
	}
}

// TestSentinelErrors tests sentinel error patterns.
func TestSentinelErrors(t *testing.T) {
	err := psdrErrors.NewModelError("LipschitzMatrix.Fit", "no samples or gradients", psdrErrors.ErrEmptyData)

	if !errors.Is(err, psdrErrors.ErrEmptyData) {
		t.Errorf("failed to identify ErrEmptyData sentinel")
	}

	wrappedErr := fmt.Errorf("estimation failed: %w", err)

	if !errors.Is(wrappedErr, psdrErrors.ErrEmptyData) {
		t.Errorf("failed to identify ErrEmptyData through wrapper")
	}

	solverErr := psdrErrors.NewModelError("SDP.Solve", "residual above feastol", psdrErrors.ErrSolverFailure)
	if !errors.Is(solverErr, psdrErrors.ErrSolverFailure) {
		t.Errorf("failed to identify ErrSolverFailure sentinel")
	}
}

// TestRecover converts panics in estimator methods into errors.
func TestRecover(t *testing.T) {
	panicky := func() (err error) {
		defer psdrErrors.Recover(&err, "LipschitzMatrix.Fit")
		panic(fmt.Errorf("index out of range"))
	}

	err := panicky()
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}

	var modelErr *psdrErrors.ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected ModelError, got %T", err)
	}
	if modelErr.Op != "LipschitzMatrix.Fit" {
		t.Errorf("expected op 'LipschitzMatrix.Fit', got %q", modelErr.Op)
	}
}
