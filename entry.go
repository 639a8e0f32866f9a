package statementq

import "encoding/json"

// Entry describes a new record handed to the Controller.
type Entry struct {
	// Kind labels the record for diagnostics (e.g., "completed/level").
	Kind string
	// Payload is the serialized statement sent as the request body.
	Payload []byte
}

// Validate checks required fields and JSON validity.
func (e Entry) Validate() error {
	return ValidateEntry(e, true)
}

// ValidateEntry validates an entry with optional JSON validation for the payload.
func ValidateEntry(entry Entry, validateJSON bool) error {
	if len(entry.Payload) == 0 {
		return ErrPayloadRequired
	}
	if validateJSON && !json.Valid(entry.Payload) {
		return ErrInvalidPayload
	}

	return nil
}
