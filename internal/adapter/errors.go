package adapter

import "errors"

// Sentinel errors mapped from relay HTTP statuses.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")

	// ErrInvalidAddress is returned for an unusable relay base URL.
	ErrInvalidAddress = errors.New("invalid relay address")
	// ErrInvalidRecordID is returned before any request for an empty id.
	ErrInvalidRecordID = errors.New("invalid record id")
)
