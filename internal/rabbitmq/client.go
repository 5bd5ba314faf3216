package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/PhotoShare/internal/config"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/messaging/payloads"
	"github.com/goccy/go-json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client представляет собой клиент RabbitMQ для очереди очистки медиа
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

var (
	_ ports.MediaCleanupPublisher = (*Client)(nil)
	_ ports.MediaCleanupConsumer  = (*Client)(nil)
)

// NewClient подключается к RabbitMQ и объявляет очередь
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn
	logger.Info("connected to RabbitMQ")

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Объявление очереди идемпотентно
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q
	logger.Info("queue declared", "queue", q.Name, "messages", q.Messages)

	return client, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
		}
	}
	c.logger.Info("RabbitMQ connection closed")
}

// PublishMediaCleanup ставит в очередь задачу на удаление файла изображения
func (c *Client) PublishMediaCleanup(ctx context.Context, payload payloads.MediaCleanupPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}
	c.logger.Info("media cleanup published", "queue", c.queue.Name, "image_id", payload.ImageID)
	return nil
}

// StartConsumingMediaCleanup регистрирует потребителя и обрабатывает сообщения в отдельной горутине
// до отмены ctx или закрытия канала.
func (c *Client) StartConsumingMediaCleanup(ctx context.Context, handler func(context.Context, payloads.MediaCleanupPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("RabbitMQ channel closed, stopping consumer")
					return
				}
				handleDelivery(ctx, c.logger, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping RabbitMQ consumer")
				return
			}
		}
	}()

	return nil
}

// handleDelivery декодирует сообщение и подтверждает его по результату обработки.
// Нечитаемое сообщение отбрасывается, сбой обработчика возвращает сообщение в очередь.
func handleDelivery(ctx context.Context, logger *slog.Logger, msg amqp.Delivery, handler func(context.Context, payloads.MediaCleanupPayload) error) {
	var payload payloads.MediaCleanupPayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil || payload.PublicID == "" {
		logger.Error("malformed media cleanup message", "error", err, "body", string(msg.Body))
		if err := msg.Nack(false, false); err != nil {
			logger.Error("error NACKing malformed message", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		logger.Error("error processing media cleanup", "error", err, "public_id", payload.PublicID)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("error ACKing message", "error", err)
		return
	}
	logger.Info("media cleanup processed", "public_id", payload.PublicID)
}
