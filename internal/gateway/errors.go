package gateway

import (
	"errors"
	"fmt"
)

// GatewayError is a remote error response. Code and Message are preserved
// verbatim for diagnostics.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// ValidationError is a local input failure; it never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var (
	// ErrUnresponsiveGateway means no response came back from the remote.
	// Treated as transient; callers log and abort without retry.
	ErrUnresponsiveGateway = errors.New("gateway did not respond")

	// ErrUnrecognizedInterval is returned by the reverse interval translator
	// for a length/unit pair outside the canonical vocabulary.
	ErrUnrecognizedInterval = errors.New("unrecognized billing interval")

	// ErrReportingDisabled means the gateway account has no permission to
	// call the transaction reporting API. The sync engine stops scanning and
	// raises an admin notice when it sees this.
	ErrReportingDisabled = errors.New("transaction reporting is not enabled for this gateway account")
)

// AsGatewayError unwraps err to a *GatewayError if there is one.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
