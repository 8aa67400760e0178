package domain

import "errors"

var (
	ErrStoreClosed     = errors.New("view state store closed")
	ErrInvalidScenario = errors.New("invalid simulation scenario")
	ErrMissingID       = errors.New("suggestion_id and conflict_id are required")
)
