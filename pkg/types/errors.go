package types

import "fmt"

// EncodingError is returned when data cannot be converted to its canonical
// string form before encryption.
type EncodingError struct {
	Err error
}

func (e EncodingError) Error() string {
	return fmt.Sprintf("data must be a string or JSON serializable value: %v", e.Err)
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

type FileNotFoundError struct {
	Path string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s not found", e.Path)
}

// KeyNotFoundError is returned when no password is given and the secret
// store holds no key for the record.
type KeyNotFoundError struct {
	Identifier string
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("no key found for %q, please provide a password", e.Identifier)
}

type DecryptionError struct {
	Reason string
	Err    error
}

func (e DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decrypt: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decrypt: %s", e.Reason)
}

func (e DecryptionError) Unwrap() error {
	return e.Err
}

type InvalidHeaderError struct {
	Reason string
}

func (e InvalidHeaderError) Error() string {
	return fmt.Sprintf("invalid record header: %s", e.Reason)
}

type UnsupportedVersionError struct {
	Value int
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported record format version: %d", e.Value)
}
