package adapter

import "errors"

var (
	// ErrGatewayUnavailable signals a transport failure or a non-2xx
	// answer from an outbound collaborator.
	ErrGatewayUnavailable = errors.New("outbound gateway unavailable")

	// ErrGatewayRejected signals that the collaborator answered but
	// refused the request payload.
	ErrGatewayRejected = errors.New("outbound gateway rejected the request")
)
