package store

import "fmt"

// StoreUnavailableError reports a backend I/O failure. It is surfaced to the
// caller unchanged; the core never retries store operations itself, since
// they are not idempotent and a blind retry could mask a real attack.
type StoreUnavailableError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable during %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(backend, op string, err error) error {
	return &StoreUnavailableError{Backend: backend, Op: op, Err: err}
}
