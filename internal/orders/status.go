package orders

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// IsValid checks if the order status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the order can no longer change on its own;
// only an external refund moves PAID further.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// CanTransitionTo reports whether the order may move to the target status.
// PENDING fans out to the three payment outcomes; PAID can only be refunded.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusFailed || target == StatusCancelled
	case StatusPaid:
		return target == StatusRefunded
	}
	return false
}
