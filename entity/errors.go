package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported upload format: only .csv and .xlsx are accepted")
	ErrNoSnapshot        = errors.New("no billing report available: run the fetch step first")
	ErrNoFinalReport     = errors.New("no final report available: run the finalize step first")
	ErrNoMetadata        = errors.New("no workflow metadata available: run the fetch step first")
	ErrLockNotObtained   = errors.New("another pipeline step is in progress")
	ErrUnknownTemplate   = errors.New("invalid template requested")
	ErrFileNotFound      = errors.New("file not found")
)

// ConfigError reports a request that references unsupported configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// AuthError wraps a token refresh failure.
type AuthError struct {
	Key string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token refresh failed for %s: %v", e.Key, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// FetchError carries a non-success reporting API response verbatim.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.Status, e.Body)
}

// ValidationError reports an upload that does not match its expected shape.
type ValidationError struct {
	Expected []string
	Actual   []string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("invalid upload: %s", strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("invalid upload columns: expected %q, got %q", e.Expected, e.Actual)
}

// MergeError reports identifiers that should be unique but are not.
type MergeError struct {
	Source string
	Keys   []string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("invalid %s: conflicting rows for %s", e.Source, strings.Join(e.Keys, ", "))
}
