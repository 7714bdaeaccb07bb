package host

import "errors"

// Sentinel errors for the update hub.
var (
	// ErrHubNotRunning is returned when publishing to a stopped hub.
	ErrHubNotRunning = errors.New("update hub is not running")

	// ErrHubAlreadyRunning is returned when Start is called twice.
	ErrHubAlreadyRunning = errors.New("update hub is already running")

	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown
	// subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrShutdownTimeout is returned when Stop's context expires before
	// the async queue drains.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)
