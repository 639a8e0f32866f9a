package statementq

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadRequired is returned when Entry.Payload is empty.
	ErrPayloadRequired = errors.New("statementq payload is required")
	// ErrInvalidPayload is returned when Entry.Payload is not valid JSON.
	ErrInvalidPayload = errors.New("statementq payload must be valid JSON")
	// ErrInvalidRecord is returned when a stored record cannot be decoded.
	ErrInvalidRecord = errors.New("statementq stored record is invalid")
	// ErrRecordNotFound is returned by Store.Get when no record has the given id.
	ErrRecordNotFound = errors.New("statementq record not found")
	// ErrStoreUnavailable matches every StoreError.
	ErrStoreUnavailable = errors.New("statementq store unavailable")
	// ErrDeliveryFailed matches every DeliveryError.
	ErrDeliveryFailed = errors.New("statementq delivery failed")
	// ErrRecordExpired is reported when a record is dropped for exceeding its budget.
	ErrRecordExpired = errors.New("statementq record dropped")
	// ErrDuplicateRecord is returned when a generated record id is already live.
	ErrDuplicateRecord = errors.New("statementq record id already live")
	// ErrDuplicateBatch is returned when a batch id is registered twice.
	ErrDuplicateBatch = errors.New("statementq batch id already registered")
	// ErrNilStore indicates that New was called without a Store.
	ErrNilStore = errors.New("statementq store is required")
	// ErrNilSender indicates that New was called without a Sender.
	ErrNilSender = errors.New("statementq sender is required")
	// ErrAlreadyRunning is returned when Run is called on a running Controller.
	ErrAlreadyRunning = errors.New("statementq controller is already running")
	// ErrSenderPanic indicates that a Sender panicked while delivering a record.
	ErrSenderPanic = errors.New("statementq sender panic")
)

// StoreError wraps a failure of the durable store. Store failures are never fatal:
// the record stays deliverable from memory but will not survive a crash.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("statementq store %s failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("statementq store %s %s failed: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// DeliveryError reports a transient failure to deliver one record.
type DeliveryError struct {
	RecordID string
	Message  string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("statementq deliver %s: %s", e.RecordID, e.Message)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Err}
}

func newDeliveryError(recordID string, err error) *DeliveryError {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	return &DeliveryError{RecordID: recordID, Message: msg, Err: err}
}

// InvalidRecordsError lists stored entries that could not be decoded. Store.List
// returns it alongside every record that did decode, so one corrupt entry never hides
// the rest of the namespace. It matches ErrInvalidRecord.
type InvalidRecordsError struct {
	IDs  []string
	Errs []error
}

// Add records one undecodable entry. id may be empty when the key itself is unreadable.
func (e *InvalidRecordsError) Add(id string, err error) {
	e.IDs = append(e.IDs, id)
	e.Errs = append(e.Errs, err)
}

// Err returns e when it holds at least one entry and nil otherwise.
func (e *InvalidRecordsError) Err() error {
	if e == nil || len(e.IDs) == 0 {
		return nil
	}

	return e
}

func (e *InvalidRecordsError) Error() string {
	return fmt.Sprintf("statementq %d stored records are invalid: %v", len(e.IDs), errors.Join(e.Errs...))
}

func (e *InvalidRecordsError) Unwrap() []error {
	return append([]error{ErrInvalidRecord}, e.Errs...)
}
