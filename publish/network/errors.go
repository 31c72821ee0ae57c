package network

import "fmt"

// InvalidCallError is returned when a required argument is missing. It is
// raised before any network activity and is never retried.
type InvalidCallError struct {
	Field string
}

func (e *InvalidCallError) Error() string {
	return fmt.Sprintf("invalid upload call: missing %s", e.Field)
}

// ChunkTransportError is returned when a single chunk's network call fails
// (connection error, non-success HTTP status, malformed response). The whole
// upload fails immediately; chunks already accepted by the backend are not
// reported as partial success.
type ChunkTransportError struct {
	ChunkIndex int
	Err        error
}

func (e *ChunkTransportError) Error() string {
	return fmt.Sprintf("chunk %d transport failed: %s", e.ChunkIndex+1, e.Err)
}

func (e *ChunkTransportError) Unwrap() error {
	return e.Err
}

// BackendRejectionError is returned when the backend responded with a
// well-formed envelope but reported a domain-level failure, for example an
// invalid token. The backend's status and message are surfaced verbatim.
type BackendRejectionError struct {
	Status  int
	Message string
}

func (e *BackendRejectionError) Error() string {
	return fmt.Sprintf("backend rejected upload (status %d): %s", e.Status, e.Message)
}

// CallbackError is returned when the caller-supplied progress callback
// returned an error. The remaining chunk sequence is abandoned.
type CallbackError struct {
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("progress callback failed: %s", e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}
