package service

import "errors"

var (
	// ErrNoToken is returned when no gateway token could be obtained.
	ErrNoToken = errors.New("unable to obtain gateway token")
	// ErrStatusUnavailable collapses every failure of a document status fetch.
	ErrStatusUnavailable = errors.New("document status unavailable")
	// ErrTransport marks network, DNS and timeout failures talking to the gateway.
	ErrTransport          = errors.New("gateway transport error")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEnvironment = errors.New("environment must be sandbox or production")
)
