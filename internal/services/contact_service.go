package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"whutmovie/internal/metrics"
	"whutmovie/internal/models"
	"whutmovie/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const minContactMessageLength = 10

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactPublisher hands a contact message to whoever answers them.
type ContactPublisher interface {
	Publish(ctx context.Context, msg models.ContactMessage) error
}

type ContactService interface {
	Submit(ctx context.Context, input ContactInput) error
}

type contactService struct {
	publisher ContactPublisher
	now       func() time.Time
	logger    *logrus.Logger
}

// NewContactService accepts a nil publisher, in which case submissions are
// only logged.
func NewContactService(publisher ContactPublisher, logger *logrus.Logger) ContactService {
	return &contactService{
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

func (s *contactService) Submit(ctx context.Context, input ContactInput) error {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Message: strings.TrimSpace(input.Message),
	}
	if msg.Name == "" {
		return invalid("name", "Name is required")
	}
	if err := utils.GetValidator().Var(msg.Email, "required,email"); err != nil {
		return invalid("email", "Email must be a valid email address")
	}
	if len([]rune(msg.Message)) < minContactMessageLength {
		return invalid("message", "Message must be at least %d characters", minContactMessageLength)
	}
	msg.SubmittedAt = s.now().Format(time.RFC3339)

	if s.publisher == nil {
		metrics.ContactMessages.WithLabelValues("logged").Inc()
		s.logger.WithFields(logrus.Fields{
			"name":  msg.Name,
			"email": msg.Email,
		}).Info("Contact message received")
		return nil
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		metrics.ContactMessages.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to queue contact message: %w", err)
	}
	metrics.ContactMessages.WithLabelValues("queued").Inc()
	return nil
}

// RabbitMQPublisher publishes contact messages as persistent JSON to a
// durable queue on the default exchange. It dials per message; the form is
// low volume.
type RabbitMQPublisher struct {
	url    string
	queue  string
	logger *logrus.Logger
}

func NewRabbitMQPublisher(url, queue string, logger *logrus.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{url: url, queue: queue, logger: logger}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, msg models.ContactMessage) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.WithError(err).Error("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WithError(err).Error("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.logger.WithError(err).Error("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.WithError(err).Error("rabbitmq: publish failed")
		return err
	}

	p.logger.WithField("queue", p.queue).Debug("Contact message queued")
	return nil
}
