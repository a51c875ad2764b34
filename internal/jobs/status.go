package jobs

// Type identifies which handler processes a job
type Type string

const (
	TypePaymentCreation      Type = "payment_creation"
	TypeOrphanedOrderCleanup Type = "orphaned_order_cleanup"
)

// IsValid checks if the job type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypePaymentCreation, TypeOrphanedOrderCleanup:
		return true
	}
	return false
}

// String returns the string representation of the type
func (t Type) String() string {
	return string(t)
}

// Status represents the lifecycle state of a job
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the job will never run again
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
