// Package errors provides the structured error types used across the PSDR
// library.
//
// The package defines a small taxonomy of error types that estimators and
// their collaborators return:
//
//   - NotFittedError: an estimator method was called before Fit
//   - DimensionError: input shapes disagree with expectations
//   - ValueError: a value violates an operation's contract
//   - ValidationError: a field of the input data failed validation
//   - ModelError: a model-level failure wrapping an underlying cause
//
// together with sentinel errors for common causes (ErrEmptyData,
// ErrSolverFailure, ...). All types support Go 1.13+ error wrapping, so
// callers can use errors.Is and errors.As to inspect failures deep in a
// chain.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying common failure causes.
var (
	// ErrEmptyData indicates an operation received no data to work on.
	ErrEmptyData = errors.New("empty data")

	// ErrNotImplemented indicates a requested variant is not implemented.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSingularMatrix indicates a matrix operation hit a singular matrix.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrSolverFailure indicates the convex solver failed to produce a
	// solution satisfying its tolerances.
	ErrSolverFailure = errors.New("solver failure")

	// ErrInfeasible indicates no feasible point exists for the request.
	ErrInfeasible = errors.New("infeasible")
)

// NotFittedError is returned when a method requiring a fitted estimator is
// called on an unfitted one.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("psdr: %s is not fitted; call Fit before %s", e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError for the given model and method.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

// DimensionError reports a mismatch between an expected and an observed
// dimension along a given axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("psdr: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError for operation op.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

// ValueError reports a value that violates an operation's contract.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("psdr: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError for operation op.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

// ValidationError reports a field of the input data that failed validation,
// carrying the offending value.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("psdr: validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ModelError is a model-level failure wrapping an underlying cause. It is
// the error type estimators use when a stage (constraint assembly, solve,
// eigendecomposition, search) fails for a reason beyond input validation.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("psdr: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("psdr: %s: %s: %v", e.Op, e.Message, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError for operation op wrapping err.
func NewModelError(op, message string, err error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: err}
}

// Recover converts a panic in the surrounding function into an error,
// preserving an already-set error. Use as a deferred call in exported
// estimator methods:
//
//	func (m *LipschitzMatrix) Fit(...) (err error) {
//		defer errors.Recover(&err, "LipschitzMatrix.Fit")
//		...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = NewModelError(op, "panic recovered", err)
			return
		}
		*errp = NewModelError(op, fmt.Sprintf("panic recovered: %v", r), nil)
	}
}
