package service

import "errors"

var (
	ErrInvalidRecordID       = errors.New("invalid record id")
	ErrNoOwner               = errors.New("no owner in request context")
	ErrVersionIsNotSpecified = errors.New("version is not specified")

	// ErrRemoteDeleteFailed is returned by Erase when the local key was
	// destroyed but the relay did not confirm removal of its copy.
	ErrRemoteDeleteFailed = errors.New("relay copy was not removed")
)
