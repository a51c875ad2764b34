package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// EmailService interface for sending emails
type EmailService interface {
	SendNotification(ctx context.Context, notification *Notification) error
	SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// SMTPEmailService is a real SMTP implementation of the EmailService interface
type SMTPEmailService struct {
	config *SMTPConfig
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return &SMTPEmailService{config: config}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SendNotification sends a notification via email
func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *Notification) error {
	htmlBody, textBody := generateContent(notification, s.config.FromName)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Subject, htmlBody, textBody)
}

// SendHTML sends an HTML email
func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, to, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// sendWithSTARTTLS sends email with STARTTLS encryption
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.config.Host,
	}

	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	_, err = w.Write(message)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return w.Close()
}

// buildMessage creates the email message with proper headers
func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Date"] = time.Now().Format(time.RFC1123Z)

	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n"

	if textBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/plain; charset=UTF-8\r\n"
		message += "\r\n"
		message += textBody + "\r\n"
	}

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/html; charset=UTF-8\r\n"
		message += "\r\n"
		message += htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	return []byte(message)
}

// generateContent creates email content per notification type
func generateContent(notification *Notification, fromName string) (string, string) {
	data := notification.TemplateData
	name := notification.RecipientName

	switch notification.Type {
	case NotificationTypeOrderConfirmation:
		seats := formatSeats(data["seats"])
		htmlBody := fmt.Sprintf(`
			<h2>Your tickets are confirmed</h2>
			<p>Hi %s,</p>
			<p>Your payment for order <strong>%v</strong> went through.</p>
			<p>Your seats: <strong>%s</strong></p>
			<p>Total: $%v</p>
			<p>See you at the show,<br>%s</p>
		`, name, data["order_id"], seats, data["total_amount"], fromName)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour payment for order %v went through.\nYour seats: %s\nTotal: $%v\n\nSee you at the show,\n%s",
			name, data["order_id"], seats, data["total_amount"], fromName)

		return htmlBody, textBody

	case NotificationTypePaymentQueued:
		htmlBody := fmt.Sprintf(`
			<h2>Your order is reserved</h2>
			<p>Hi %s,</p>
			<p>We reserved your seats for order <strong>%v</strong>, but our payment
			provider is temporarily unavailable.</p>
			<p>We will email you a payment link as soon as it is back. No action
			needed right now.</p>
			<p>Best regards,<br>%s</p>
		`, name, data["order_id"], fromName)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nWe reserved your seats for order %v, but our payment provider is temporarily unavailable.\nWe will email you a payment link as soon as it is back.\n\nBest regards,\n%s",
			name, data["order_id"], fromName)

		return htmlBody, textBody

	case NotificationTypePaymentReady:
		htmlBody := fmt.Sprintf(`
			<h2>Your payment link is ready</h2>
			<p>Hi %s,</p>
			<p>You can now pay for order <strong>%v</strong>:</p>
			<p><a href="%v">Complete your payment</a></p>
			<p>Best regards,<br>%s</p>
		`, name, data["order_id"], data["payment_url"], fromName)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYou can now pay for order %v:\n%v\n\nBest regards,\n%s",
			name, data["order_id"], data["payment_url"], fromName)

		return htmlBody, textBody

	case NotificationTypePaymentManualRequired:
		htmlBody := fmt.Sprintf(`
			<h2>We need to sort out your payment</h2>
			<p>Hi %s,</p>
			<p>We could not set up the payment for order <strong>%v</strong>
			automatically. Our team has been alerted and will contact you.</p>
			<p>Your seats remain reserved in the meantime.</p>
			<p>Best regards,<br>%s</p>
		`, name, data["order_id"], fromName)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nWe could not set up the payment for order %v automatically. Our team has been alerted and will contact you.\nYour seats remain reserved in the meantime.\n\nBest regards,\n%s",
			name, data["order_id"], fromName)

		return htmlBody, textBody

	default:
		htmlBody := fmt.Sprintf(`
			<h2>%s</h2>
			<p>Hi %s,</p>
			<p>Best regards,<br>%s</p>
		`, notification.Subject, name, fromName)

		textBody := fmt.Sprintf("Hi %s,\n\nBest regards,\n%s", name, fromName)

		return htmlBody, textBody
	}
}

func formatSeats(value interface{}) string {
	seats, ok := value.([]string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	return strings.Join(seats, ", ")
}

// MockEmailService logs instead of sending, for local development
type MockEmailService struct{}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SendNotification sends a mock notification
func (s *MockEmailService) SendNotification(ctx context.Context, notification *Notification) error {
	log.Printf("[MOCK EMAIL] %s notification to %s (%s)",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
	)
	return nil
}

// SendHTML sends a mock HTML email
func (s *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log.Printf("[MOCK EMAIL] To: %s, Subject: %s", to, subject)
	return nil
}
