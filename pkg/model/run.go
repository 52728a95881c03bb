package model

import (
	"fmt"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// Run drives a model through its lifecycle and reports whether it reached
// StatusFinalized.
func Run(m Model, logger rules.Logger) bool {
	return RunE(m, logger) == nil
}

// RunE is Run returning the reason for failure. Validation failure leaves
// the model in StatusValidationFailed; any later failure in StatusFailed.
func RunE(m Model, logger rules.Logger) error {
	transition(m, StatusValidating, logger)
	if !m.Validate(logger) {
		transition(m, StatusValidationFailed, logger)
		return fmt.Errorf("model %s: %w", m.Name(), ErrValidationFailed)
	}
	transition(m, StatusValidated, logger)

	phases := []struct {
		active, done Status
		run          func(rules.Logger) error
	}{
		{StatusInitializing, StatusInitialized, m.Initialize},
		{StatusExecuting, StatusExecuted, m.Execute},
		{StatusFinalizing, StatusFinalized, m.Finalize},
	}
	for _, phase := range phases {
		transition(m, phase.active, logger)
		if err := phase.run(logger); err != nil {
			logger.Error(fmt.Sprintf("Model %s failed while %s: %v", m.Name(), phase.active, err))
			transition(m, StatusFailed, logger)
			return &PhaseError{Model: m.Name(), Phase: phase.active, Cause: err}
		}
		transition(m, phase.done, logger)
	}
	return nil
}

func transition(m Model, s Status, logger rules.Logger) {
	m.SetStatus(s)
	logger.Info(fmt.Sprintf("Model %s: %s", m.Name(), s))
}
