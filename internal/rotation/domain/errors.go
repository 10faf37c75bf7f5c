package domain

import (
	"github.com/keywell/vault/internal/errors"
)

// Rotation scheduling error definitions.
var (
	// ErrScheduleNotFound indicates the referenced schedule does not exist.
	ErrScheduleNotFound = errors.Wrap(errors.ErrNotFound, "rotation schedule not found")

	// ErrScheduleSettled indicates the schedule is already completed, failed,
	// or cancelled and cannot be processed or cancelled again.
	ErrScheduleSettled = errors.Wrap(errors.ErrInvalidState, "rotation schedule already settled")

	// ErrScheduleExists indicates the secret already has an open schedule.
	ErrScheduleExists = errors.Wrap(errors.ErrConflict, "open rotation schedule already exists")

	// ErrRotationFailed indicates a secret rotation errored. The scheduler
	// records it on the schedule row instead of surfacing a crash.
	ErrRotationFailed = errors.Wrap(errors.ErrInvalidState, "rotation failed")
)
