// Package service turns operator intents into backend commands and local
// state changes.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/logging"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/metrics"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/backend"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Backend is the command channel used by Actions
type Backend interface {
	AcceptSuggestion(ctx context.Context, suggestionID, conflictID string) (*backend.AcceptResponse, error)
	Simulate(ctx context.Context, scenario domain.SimulationScenario) (*domain.SimulationResult, error)
}

// StateStore receives optimistic updates
type StateStore interface {
	AcceptOptimistically(suggestionID, conflictID string) error
}

// Actions handles user intents
type Actions struct {
	backend  Backend
	store    StateStore
	log      *zap.Logger
	validate *validator.Validate
}

// NewActions creates a new Actions
func NewActions(b Backend, s StateStore, log *zap.Logger) *Actions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Actions{
		backend:  b,
		store:    s,
		log:      log.Named("actions"),
		validate: validator.New(),
	}
}

// AcceptSuggestion asks the backend to implement a suggestion and, only once
// it confirms, applies the optimistic update locally. Failures leave the
// local state untouched and are not retried.
func (a *Actions) AcceptSuggestion(ctx context.Context, suggestionID, conflictID string) error {
	log := logging.FromContext(ctx, a.log).With(
		zap.String("suggestion_id", suggestionID),
		zap.String("conflict_id", conflictID),
	)
	if suggestionID == "" || conflictID == "" {
		return domain.ErrMissingID
	}

	if _, err := a.backend.AcceptSuggestion(ctx, suggestionID, conflictID); err != nil {
		outcome := "failed"
		if errors.Is(err, backend.ErrRejected) {
			outcome = "rejected"
		}
		metrics.AcceptOutcomes.WithLabelValues(outcome).Inc()
		log.Error("failed to accept suggestion", zap.Error(err))
		return err
	}

	if err := a.store.AcceptOptimistically(suggestionID, conflictID); err != nil {
		// the view is gone; the backend already applied the acceptance
		if errors.Is(err, domain.ErrStoreClosed) {
			metrics.AcceptOutcomes.WithLabelValues("dropped").Inc()
			log.Debug("view closed before optimistic update")
			return nil
		}
		return fmt.Errorf("failed to apply optimistic update: %w", err)
	}

	metrics.AcceptOutcomes.WithLabelValues("accepted").Inc()
	log.Info("suggestion accepted")
	return nil
}

// RunSimulation forwards a what-if scenario to the backend
func (a *Actions) RunSimulation(ctx context.Context, scenario domain.SimulationScenario) (*domain.SimulationResult, error) {
	if err := a.validate.Struct(scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
	}

	res, err := a.backend.Simulate(ctx, scenario)
	if err != nil {
		logging.FromContext(ctx, a.log).Error("simulation failed",
			zap.String("scenario", scenario.Name),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}
