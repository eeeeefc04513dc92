package models

import "errors"

var (
	// ErrStorageUnavailable means the durable store could not be opened or reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrValidation marks missing or malformed workflow input.
	ErrValidation = errors.New("validation failed")
	// ErrImportParse marks a backup document that could not be decoded.
	ErrImportParse = errors.New("backup document is invalid")
	// ErrAnalysisFailed marks a failed or unusable external analysis call.
	ErrAnalysisFailed = errors.New("image analysis failed")
	// ErrAnalysisUnavailable is returned when no analyzer is configured (offline).
	ErrAnalysisUnavailable = errors.New("image analysis unavailable")
	// ErrAnalysisInProgress rejects a duplicate submission while one is pending.
	ErrAnalysisInProgress = errors.New("an analysis is already running")
	// ErrNotFound is returned by explicit transitions on a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrNoActiveUser is returned when an operation needs a logged in user.
	ErrNoActiveUser = errors.New("no active user")
	// ErrNoActiveBreeder is returned when an operation needs a selected breeder.
	ErrNoActiveBreeder = errors.New("no breeder selected")
)
