package llm

import "fmt"

// TransportError reports a timeout, non-zero exit, or network failure
// talking to a local or remote model (§7).
type TransportError struct {
	Transport string // "cli", "http", or "remote"
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
