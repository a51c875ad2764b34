package payments

// Status represents the lifecycle state of a payment attempt
type Status string

const (
	// StatusPending means the payment row exists but the provider call has
	// not succeeded yet (possibly queued for retry).
	StatusPending Status = "PENDING"

	// StatusProcessing means the provider accepted the payment and we are
	// waiting for the outcome webhook.
	StatusProcessing Status = "PROCESSING"

	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the payment status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the payment can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo reports whether the payment may move to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusFailed || target == StatusCancelled
	case StatusProcessing:
		return target == StatusSucceeded || target == StatusFailed || target == StatusCancelled
	}
	return false
}
