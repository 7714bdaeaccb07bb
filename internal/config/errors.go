package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a setting value is out of range or
	// names an unknown policy.
	ErrValidationFailed = errors.New("config validation failed")

	// ErrUnsupportedFormat indicates the config file extension is neither
	// TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrWatcherRunning is returned by Watch when live reload is already
	// active.
	ErrWatcherRunning = errors.New("config watcher is already running")

	// ErrNoPath is returned by Watch when the Config has no file path.
	ErrNoPath = errors.New("config has no file path")
)

// ParseError describes a malformed configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Message describes the decoder failure.
	Message string

	// Err is the underlying decoder error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
