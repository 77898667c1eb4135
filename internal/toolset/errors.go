package toolset

import "errors"

// unknownToolsetError is returned for keys absent from the registry.
type unknownToolsetError struct{ key string }

func (e unknownToolsetError) Error() string { return "unknown toolset: " + e.key }

// ErrUnknownToolset constructs the error returned for unregistered keys.
func ErrUnknownToolset(key string) error { return unknownToolsetError{key: key} }

// IsUnknownToolset reports whether err indicates an unregistered key.
func IsUnknownToolset(err error) bool {
	var e unknownToolsetError
	return errors.As(err, &e)
}

// LoadError reports a failed bundle load. The key is left in the failed set.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string { return "load toolset " + e.Key + ": " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadFailure reports whether err is (or wraps) a LoadError.
func IsLoadFailure(err error) bool {
	var e *LoadError
	return errors.As(err, &e)
}
