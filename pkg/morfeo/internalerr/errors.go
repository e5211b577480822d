package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrResource         = errors.New("resource error")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInputDecoding    = errors.New("input decoding error")
	ErrUnknownEncoding  = errors.New("unknown encoding")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ResourceError reports a data file that is missing, unreadable or malformed.
type ResourceError struct {
	Resource string // tokenizer, splitter, dictionary, ...
	Path     string
	Line     int // 0 when the error is not tied to a line
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s resource %s:%d: %v", e.Resource, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s resource %s: %v", e.Resource, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrResource) true for every ResourceError.
func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// ConfigError reports inconsistent options, e.g. a module enabled without
// the resource it needs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// DecodingError reports an input chunk that is not valid in the configured
// encoding. It is recoverable: the stream loop skips or repairs the chunk.
type DecodingError struct {
	Line int
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("input line %d: %v", e.Line, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool { return target == ErrInputDecoding }
