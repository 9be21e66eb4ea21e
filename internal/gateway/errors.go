package gateway

import "fmt"

// GatewayError wraps any failure reaching or parsing the external AI
// service. It is always recoverable: the orchestrator converts it to a
// user-visible message and never lets it escape the session.
type GatewayError struct {
	Op  string // operation name, e.g. "check grammar"
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: failed to %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func gatewayErr(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}
