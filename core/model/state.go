// Package model provides core abstractions shared by PSDR estimators.
//
// The central piece is StateManager, which tracks whether an estimator has
// been fitted and what data shape it was fitted on. Estimators compose a
// StateManager rather than embedding it, so the fitted-state contract
// ({unfit} -> Fit -> {fit}) is enforced uniformly:
//
//	type MyEstimator struct {
//		state *model.StateManager
//	}
//
//	func (m *MyEstimator) Fit(...) error {
//		// estimation logic
//		m.state.SetFitted()
//		return nil
//	}
package model

import "sync"

// StateManager tracks the learning state of an estimator. Safe for
// concurrent readers; a Fit call is the only writer by the library's
// single-threaded fit contract.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
	nSamples  int
}

// NewStateManager creates an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as fitted. Called by estimator
// implementations after a successful Fit, never by end users.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
}

// SetDimensions records the data shape the estimator was fitted on.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// NFeatures returns the input dimension seen during Fit.
func (s *StateManager) NFeatures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures
}

// NSamples returns the sample count seen during Fit.
func (s *StateManager) NSamples() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples
}

// Reset returns the estimator to its initial unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}
