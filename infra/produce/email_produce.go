package produce

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EmailExchange        = "email_exchange"
	EmailAlertRoutingKey = "email.alert"
	EmailAlertQueue      = "email.alert"
)

type EmailMessage struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
}

type EmailService struct {
	channel *amqp.Channel
}

func InitEmailService(channel *amqp.Channel) *EmailService {
	service := &EmailService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		EmailExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare email exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		EmailAlertQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare email alert queue: " + err.Error())
	}

	err = channel.QueueBind(
		EmailAlertQueue,
		EmailAlertRoutingKey,
		EmailExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind email alert queue: " + err.Error())
	}

	return service
}

// SendAlertEmail hands an alert notification to the downstream mailer via the
// email exchange. Delivery beyond the broker is the mailer's concern.
func (s *EmailService) SendAlertEmail(ctx context.Context, recipient, subject, content string) error {
	message := EmailMessage{
		Type:      "alert",
		Recipient: recipient,
		Subject:   subject,
		Content:   content,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		EmailExchange,
		EmailAlertRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish email message: %w", err)
	}

	return nil
}
