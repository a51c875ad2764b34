package jobs

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// JSONMap is an opaque JSON payload stored as jsonb
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for database retrieval
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// GormDataType tells GORM how to handle this type
func (JSONMap) GormDataType() string {
	return "jsonb"
}

// Job is one unit of deferred work in the retry queue. Payloads are opaque
// JSON; the handler registered for the job's type knows how to read them.
type Job struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Type           Type       `gorm:"type:varchar(50);index;not null" json:"type"`
	Status         Status     `gorm:"type:varchar(20);check:status IN ('PENDING', 'PROCESSING', 'COMPLETED', 'FAILED');default:'PENDING';index" json:"status"`
	Data           JSONMap    `gorm:"type:jsonb" json:"data"`
	ExecutionCount int        `gorm:"default:0" json:"execution_count"`
	NextRetryAt    time.Time  `gorm:"index;not null" json:"next_retry_at"`
	ErrorMessage   *string    `gorm:"type:text" json:"error_message,omitempty"`
	Result         *string    `gorm:"type:text" json:"result,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName sets the table name for Job
func (Job) TableName() string {
	return "jobs"
}

// IsDue reports whether the job is ready to be claimed
func (j *Job) IsDue(now time.Time) bool {
	return j.Status == StatusPending && !j.NextRetryAt.After(now)
}
