package shows

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// IsValid checks if the show status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

type PerformanceStatus string

const (
	PerformanceStatusScheduled PerformanceStatus = "SCHEDULED"
	PerformanceStatusOnSale    PerformanceStatus = "ON_SALE"
	PerformanceStatusClosed    PerformanceStatus = "CLOSED"
	PerformanceStatusCancelled PerformanceStatus = "CANCELLED"
)

// IsValid checks if the performance status is valid
func (s PerformanceStatus) IsValid() bool {
	switch s {
	case PerformanceStatusScheduled, PerformanceStatusOnSale, PerformanceStatusClosed, PerformanceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PerformanceStatus
func (s PerformanceStatus) String() string {
	return string(s)
}
