package statement

import "errors"

var (
	// ErrPlayerMailRequired is returned by NewBuilder when the player has no mail.
	ErrPlayerMailRequired = errors.New("statementq statement: player mail is required")
	// ErrInvalidVerb is returned when a verb lacks an id or display map.
	ErrInvalidVerb = errors.New("statementq statement: invalid verb")
	// ErrInvalidObject is returned when an object lacks an id, type, name or description.
	ErrInvalidObject = errors.New("statementq statement: invalid object")
	// ErrObjectNotAllowed is returned when a catalog verb is paired with an object it does not accept.
	ErrObjectNotAllowed = errors.New("statementq statement: object not allowed for verb")
	// ErrEnqueuerRequired is returned by Enqueue when no queue is given.
	ErrEnqueuerRequired = errors.New("statementq statement: enqueuer is required")
)
