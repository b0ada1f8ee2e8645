package models

import "errors"

var (
	// ErrNoData means a provider returned nothing usable.
	ErrNoData = errors.New("no data")
	// ErrNotFound means a lookup matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientHistory means a transform needs more observations.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrNoCredential means a provider key is not configured.
	ErrNoCredential = errors.New("no credential configured")
	// ErrArchiveDisabled means no queryable archive store is configured.
	ErrArchiveDisabled = errors.New("archive store not configured")
)
