package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// NotificationService is the high-level entry point the rest of the system
// uses. SendOrderNotification is fire-and-forget from the caller's point of
// view: delivery happens asynchronously via Kafka workers.
type NotificationService interface {
	SendOrderNotification(ctx context.Context, email, name string, orderID uuid.UUID,
		notificationType NotificationType, templateData map[string]interface{}) error

	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ServiceConfig struct {
	KafkaBrokers       []string
	NotificationTopic  string
	DeadLetterTopic    string
	ConsumerGroupID    string
	NumConsumerWorkers int
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFromEmail      string
	SMTPFromName       string
}

// EmailNotificationService publishes notifications to Kafka and runs the
// consumer workers that deliver them via SMTP.
type EmailNotificationService struct {
	config       *ServiceConfig
	producer     NotificationProducer
	consumer     NotificationConsumer
	emailService EmailService

	isRunning bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEmailNotificationService(config *ServiceConfig) (NotificationService, error) {
	if config == nil {
		return nil, fmt.Errorf("notification service config is required")
	}

	var emailService EmailService
	if config.SMTPHost != "" {
		smtpConfig := &SMTPConfig{
			Host:      config.SMTPHost,
			Port:      config.SMTPPort,
			Username:  config.SMTPUsername,
			Password:  config.SMTPPassword,
			FromEmail: config.SMTPFromEmail,
			FromName:  config.SMTPFromName,
			UseTLS:    true,
		}
		smtpService, err := NewSMTPEmailService(smtpConfig)
		if err != nil {
			return nil, err
		}
		emailService = smtpService
	} else {
		emailService = NewMockEmailService()
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = config.KafkaBrokers
	producerConfig.NotificationTopic = config.NotificationTopic
	producerConfig.DeadLetterTopic = config.DeadLetterTopic

	producer, err := NewKafkaNotificationProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = config.KafkaBrokers
	consumerConfig.Topics = []string{config.NotificationTopic}
	consumerConfig.GroupID = config.ConsumerGroupID

	consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService, producer)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &EmailNotificationService{
		config:       config,
		producer:     producer,
		consumer:     consumer,
		emailService: emailService,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

func (ens *EmailNotificationService) Start(ctx context.Context) error {
	ens.mu.Lock()
	defer ens.mu.Unlock()

	if ens.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	workers := ens.config.NumConsumerWorkers
	if workers <= 0 {
		workers = 3
	}

	if err := ens.consumer.StartConsumers(ens.ctx, workers); err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	ens.isRunning = true
	log.Printf("Notification service started with %d workers", workers)
	return nil
}

func (ens *EmailNotificationService) Stop() error {
	ens.mu.Lock()
	defer ens.mu.Unlock()

	if !ens.isRunning {
		return fmt.Errorf("notification service is not running")
	}

	ens.cancel()

	if err := ens.consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}

	if err := ens.producer.Close(); err != nil {
		log.Printf("Error closing producer: %v", err)
	}

	ens.isRunning = false
	return nil
}

func (ens *EmailNotificationService) SendOrderNotification(ctx context.Context, email, name string,
	orderID uuid.UUID, notificationType NotificationType, templateData map[string]interface{}) error {

	notification := NewNotificationBuilder().
		WithType(notificationType).
		WithRecipient(email, name).
		WithOrderContext(orderID).
		WithTemplateData(templateData).
		WithSubject(generateSubject(notificationType)).
		Build()

	return ens.producer.PublishNotification(ctx, notification)
}

func (ens *EmailNotificationService) HealthCheck(ctx context.Context) error {
	ens.mu.RLock()
	isRunning := ens.isRunning
	ens.mu.RUnlock()

	if !isRunning {
		return fmt.Errorf("notification service is not running")
	}

	if err := ens.producer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("producer health check failed: %w", err)
	}

	if err := ens.consumer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("consumer health check failed: %w", err)
	}

	return nil
}

// generateSubject generates subjects for the supported notification types
func generateSubject(notificationType NotificationType) string {
	switch notificationType {
	case NotificationTypeOrderConfirmation:
		return "Your tickets are confirmed"
	case NotificationTypePaymentQueued:
		return "Your order is reserved - payment pending"
	case NotificationTypePaymentReady:
		return "Your payment link is ready"
	case NotificationTypePaymentManualRequired:
		return "Action needed for your order"
	default:
		return "Notification from ShowTix"
	}
}

// DirectNotificationService delivers synchronously without Kafka. Used when
// the broker is disabled (local development, tests).
type DirectNotificationService struct {
	emailService EmailService
}

func NewDirectNotificationService(emailService EmailService) NotificationService {
	if emailService == nil {
		emailService = NewMockEmailService()
	}
	return &DirectNotificationService{emailService: emailService}
}

func (dns *DirectNotificationService) SendOrderNotification(ctx context.Context, email, name string,
	orderID uuid.UUID, notificationType NotificationType, templateData map[string]interface{}) error {

	notification := NewNotificationBuilder().
		WithType(notificationType).
		WithRecipient(email, name).
		WithOrderContext(orderID).
		WithTemplateData(templateData).
		WithSubject(generateSubject(notificationType)).
		Build()

	return dns.emailService.SendNotification(ctx, notification)
}

func (dns *DirectNotificationService) Start(ctx context.Context) error { return nil }
func (dns *DirectNotificationService) Stop() error                     { return nil }
func (dns *DirectNotificationService) HealthCheck(ctx context.Context) error {
	return nil
}
