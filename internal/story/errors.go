package story

import "errors"

// Engine error taxonomy. StateError-class sentinels are swallowed at the
// handler boundary and logged at debug level; ResourceError-class sentinels
// surface to the user as rejection messages without consuming the action.
var (
	// ErrAlreadyActive means a channel already hosts an active session; the
	// caller must end or replace it explicitly.
	ErrAlreadyActive = errors.New("channel already has an active session")

	// ErrNoSession means no session exists for the channel.
	ErrNoSession = errors.New("no session for channel")

	// ErrInactiveSession means the session exists but is no longer eligible
	// for mutation.
	ErrInactiveSession = errors.New("session is inactive")

	// ErrWrongPhase means the event does not apply to the session's current
	// state (e.g. an accusation before the intro is acknowledged).
	ErrWrongPhase = errors.New("event does not match session phase")

	// ErrTurnLimit means the turn counter already reached the chapter limit.
	ErrTurnLimit = errors.New("turn limit reached")

	// ErrInsufficientItem means the user does not hold the inventory item an
	// action requires.
	ErrInsufficientItem = errors.New("insufficient inventory item")

	// ErrUnknownChapter means no chapter definition matches the request.
	ErrUnknownChapter = errors.New("unknown chapter")
)

// IsStateError reports whether err is a silently-ignorable state mismatch.
func IsStateError(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrInactiveSession) ||
		errors.Is(err, ErrWrongPhase) ||
		errors.Is(err, ErrTurnLimit)
}
