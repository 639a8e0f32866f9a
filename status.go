package statementq

// Phase is the state of the flush cycle.
type Phase int32

const (
	// PhaseIdle means no cycle is running.
	PhaseIdle Phase = iota
	// PhaseReconciling means the store is being scanned for records to re-admit.
	PhaseReconciling
	// PhaseDispatching means a batch is being handed to the Dispatcher.
	PhaseDispatching
	// PhaseAwaitingAck means a batch is in flight and its terminal message is pending.
	PhaseAwaitingAck
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReconciling:
		return "reconciling"
	case PhaseDispatching:
		return "dispatching"
	case PhaseAwaitingAck:
		return "awaiting_ack"
	default:
		return "unknown"
	}
}

// DropReason explains why a record was purged without delivery.
type DropReason int

const (
	// DropAttemptsExhausted means the record reached the maximum number of attempts.
	DropAttemptsExhausted DropReason = iota + 1
	// DropExpired means the last attempt is older than the maximum age.
	DropExpired
	// DropRejected means the FailureClassifier marked the failure as permanent.
	DropRejected
	// DropInvalid means the stored entry could not be decoded.
	DropInvalid
)

func (r DropReason) String() string {
	switch r {
	case DropAttemptsExhausted:
		return "attempts_exhausted"
	case DropExpired:
		return "expired"
	case DropRejected:
		return "rejected"
	case DropInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}
