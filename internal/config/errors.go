package config

import "fmt"

// ParseError reports a config file that exists but cannot be decoded.
// Callers must surface this rather than fall back to defaults.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports an I/O failure while persisting the config file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write config file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
