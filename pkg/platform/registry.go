package platform

import (
	"errors"
	"fmt"
)

// OpenFunc opens a client bound to one game session.
type OpenFunc func(gameID uint64) (Client, error)

var (
	// ErrNoDriver reports that no platform binding is linked into the
	// binary (typically the native client library is absent).
	ErrNoDriver = errors.New("no platform driver registered")

	// ErrInitFailed wraps a driver that is present but failed to open.
	ErrInitFailed = errors.New("platform client initialization failed")
)

var driver OpenFunc

// RegisterDriver installs the platform binding. Only the first
// registration wins; later calls are ignored.
func RegisterDriver(open OpenFunc) {
	if open == nil {
		return
	}
	if driver == nil {
		driver = open
	}
}

// Open connects to the platform client for a game session using the
// registered driver.
func Open(gameID uint64) (Client, error) {
	if driver == nil {
		return nil, ErrNoDriver
	}
	c, err := driver(gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	return c, nil
}
