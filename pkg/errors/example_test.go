package errors_test

import (
	"errors"
	"fmt"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// Example demonstrates Go 1.13+ error wrapping with the PSDR error types.
func Example() {
	baseErr := psdrErrors.ErrSolverFailure

	// Wrap the sentinel with stage context.
	solveErr := psdrErrors.NewModelError("LipschitzMatrix.Fit", "semidefinite solve failed", baseErr)

	// Further wrap with caller context.
	opErr := fmt.Errorf("estimating sensitivity metric: %w", solveErr)

	if errors.Is(opErr, baseErr) {
		fmt.Println("solver failure found in chain")
	}

	unwrapped := errors.Unwrap(opErr)
	fmt.Printf("Unwrapped: %v\n", unwrapped)

	// Output: solver failure found in chain
	// Unwrapped: psdr: LipschitzMatrix.Fit: semidefinite solve failed: solver failure
}

// Example_customErrorTypes demonstrates typed error extraction.
func Example_customErrorTypes() {
	dimErr := psdrErrors.NewDimensionError("Bounds", 5, 3, 1)

	wrappedErr := fmt.Errorf("query failed: %w", dimErr)

	var dimensionErr *psdrErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 5, got 3
}

// Example_errorComparison demonstrates comparison patterns across the taxonomy.
func Example_errorComparison() {
	notFittedErr := psdrErrors.NewNotFittedError("LipschitzMatrix", "Bounds")
	valueErr := psdrErrors.NewValueError("LipschitzConstant", "epsilon must be nonnegative")

	var notFitted *psdrErrors.NotFittedError
	if errors.As(notFittedErr, &notFitted) {
		fmt.Printf("Model %s is not fitted for %s\n",
			notFitted.ModelName, notFitted.Method)
	}

	var valErr *psdrErrors.ValueError
	if errors.As(valueErr, &valErr) {
		fmt.Printf("Value error in %s: %s\n", valErr.Op, valErr.Message)
	}

	// Output: Model LipschitzMatrix is not fitted for Bounds
	// Value error in LipschitzConstant: epsilon must be nonnegative
}
