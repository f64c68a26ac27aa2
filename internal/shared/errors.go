package shared

import "fmt"

// ErrorKind classifies failures from external providers.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindProvider          ErrorKind = "provider_error"
	KindTransport         ErrorKind = "transport_error"
	KindNoResults         ErrorKind = "no_results"
)

// ErrorDetail is the error half of every provider call result.
// Status is the HTTP status code for provider errors, 0 otherwise.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
}

func (e *ErrorDetail) Error() string {
	if e.Kind == KindProvider && e.Status != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// MissingCredential reports a required key or parameter that was not supplied.
// User-correctable; never retried.
func MissingCredential(message string) *ErrorDetail {
	return &ErrorDetail{Kind: KindMissingCredential, Message: message}
}

// ProviderError reports a non-2xx response from an external provider.
func ProviderError(status int, message string) *ErrorDetail {
	return &ErrorDetail{Kind: KindProvider, Status: status, Message: message}
}

// TransportError reports a network failure, timeout, or malformed response.
func TransportError(err error) *ErrorDetail {
	return &ErrorDetail{Kind: KindTransport, Message: err.Error()}
}

// NoResults reports a search that succeeded but returned nothing usable.
// Surfaced as a soft warning, not a hard failure.
func NoResults(message string) *ErrorDetail {
	return &ErrorDetail{Kind: KindNoResults, Message: message}
}
