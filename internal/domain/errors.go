package domain

import "errors"

// Domain-level errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrNoCommand        = errors.New("no pending command")
	ErrInvalidProfile   = errors.New("invalid profile id")
	ErrInvalidMode      = errors.New("invalid system mode")
	ErrNotManualMode    = errors.New("system is not in manual mode")
	ErrDatabaseError    = errors.New("database error")
	ErrQueueError       = errors.New("queue error")
)
