package ippclient

import "fmt"

// TransportFailure is surfaced whenever the facade cannot get a decoded,
// request-id-matching response back from the transport: a transport-level
// send/receive error, an undecodable response, or a request-id mismatch
// (spec §7, §8 property 6).
type TransportFailure struct {
	Detail string
	Cause  error
}

func (e *TransportFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ippclient: transport failure: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("ippclient: transport failure: %s", e.Detail)
}

func (e *TransportFailure) Unwrap() error { return e.Cause }

func transportFailure(detail string, cause error) error {
	return &TransportFailure{Detail: detail, Cause: cause}
}
