package entity

import "errors"

// Domain errors for posts
var (
	// Validation errors
	ErrNoAccounts          = errors.New("at least one target account is required")
	ErrEmptyPost           = errors.New("post requires text or media")
	ErrMissingSchedule     = errors.New("scheduled post requires a scheduled time")
	ErrScheduledTimeInPast = errors.New("scheduled time must be in the future")

	// Business logic errors
	ErrPostNotFound     = errors.New("post not found")
	ErrPostNotEditable  = errors.New("post cannot be edited in current status")
	ErrPostNotDeletable = errors.New("published content cannot be deleted from our system")
	ErrInvalidStatus    = errors.New("invalid post status")
)
