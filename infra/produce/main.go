package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	EmailService *EmailService
}

func InitProduce(channel *amqp.Channel) *Produce {
	emailService := InitEmailService(channel)
	if emailService == nil {
		panic("Failed to initialize Email service")
	}

	return &Produce{
		EmailService: emailService,
	}
}
