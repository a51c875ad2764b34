package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	// NotificationTypeOrderConfirmation is sent after payment success, with
	// the assigned seats in the template data.
	NotificationTypeOrderConfirmation NotificationType = "ORDER_CONFIRMATION"

	// NotificationTypePaymentQueued is sent when the payment provider was
	// unreachable at checkout and the retry queue took over.
	NotificationTypePaymentQueued NotificationType = "PAYMENT_QUEUED"

	// NotificationTypePaymentReady is sent when a queued payment was finally
	// created and the customer can pay via the included link.
	NotificationTypePaymentReady NotificationType = "PAYMENT_READY"

	// NotificationTypePaymentManualRequired is sent when payment creation
	// exhausted its retries and an operator has to step in.
	NotificationTypePaymentManualRequired NotificationType = "PAYMENT_MANUAL_REQUIRED"
)

type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "LOW"
	NotificationPriorityMedium   NotificationPriority = "MEDIUM"
	NotificationPriorityHigh     NotificationPriority = "HIGH"
	NotificationPriorityCritical NotificationPriority = "CRITICAL"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is the message that flows through the notification topic
type Notification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	OrderID *uuid.UUID `json:"order_id,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}

type NotificationBuilder struct {
	notification *Notification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &Notification{
			ID:           uuid.New(),
			Status:       NotificationStatusPending,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
			TemplateData: make(map[string]interface{}),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	nb.notification.Subject = subject
	return nb
}

func (nb *NotificationBuilder) WithTemplateData(data map[string]interface{}) *NotificationBuilder {
	nb.notification.TemplateData = data
	return nb
}

func (nb *NotificationBuilder) WithOrderContext(orderID uuid.UUID) *NotificationBuilder {
	nb.notification.OrderID = &orderID
	return nb
}

func (nb *NotificationBuilder) Build() *Notification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypePaymentManualRequired:
		return NotificationPriorityCritical
	case NotificationTypePaymentReady:
		return NotificationPriorityHigh
	case NotificationTypeOrderConfirmation:
		return NotificationPriorityMedium
	case NotificationTypePaymentQueued:
		return NotificationPriorityMedium
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey keeps all messages for one customer on one partition
func (n *Notification) GetPartitionKey() string {
	return n.RecipientEmail
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func (n *Notification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

func (n *Notification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	n.UpdatedAt = time.Now()

	errorStr := err.Error()
	n.LastError = &errorStr
}
