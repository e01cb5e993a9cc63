package secrets

import (
	"errors"
	"fmt"
)

// ErrConnection indicates the system secret service could not be reached or
// offered no usable collection.
var ErrConnection = errors.New("secret service unreachable")

// ErrUnlock indicates the default collection could not be unlocked, typically
// because the user dismissed the unlock prompt.
var ErrUnlock = errors.New("failed to unlock collection")

// StoreError reports a failure to persist or remove a secret after the
// backing service was successfully queried.
type StoreError struct {
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("secret %q: %v", e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// EncodingError reports a stored payload that is not valid UTF-8.
type EncodingError struct {
	Key string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("secret %q is not valid UTF-8", e.Key)
}
