package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sameicp/assignment-monitor/internal/config"
)

const (
	dlxName             = "common_dlx"
	dlxRoutingPostfix   = "_routing_key"
	delayedQueuePostfix = "_delay"
	retryAttemptsHeader = "x-processing-attempts"
)

type RabbitMqClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewRabbitMqClient connects to RabbitMQ and declares queueName together with
// its delay queue. Rejected messages wait in the delay queue for
// cfg.ReQueueDelayTime and are then routed back to queueName.
func NewRabbitMqClient(cfg *config.QueueConfig, queueName string) (*RabbitMqClient, error) {
	amqpURI := fmt.Sprintf(
		"amqp://%s:%s@%s", url.QueryEscape(cfg.QueueUser), url.QueryEscape(cfg.QueuePassword), cfg.Url,
	)

	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if err := declareQueues(ch, cfg, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMqClient{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
		stopCh:     make(chan struct{}),
	}, nil
}

func declareQueues(ch *amqp.Channel, cfg *config.QueueConfig, queueName string) error {
	// Process one message at a time
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	// A single dead letter exchange is shared by all queues
	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter exchange: %w", err)
	}

	delayQueueName := queueName + delayedQueuePostfix
	_, err := ch.QueueDeclare(delayQueueName, true, false, false, false, amqp.Table{
		"x-message-ttl":             cfg.ReQueueDelayTime.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queueName,
	})
	if err != nil {
		return fmt.Errorf("failed to declare delay queue %s: %w", delayQueueName, err)
	}
	if err := ch.QueueBind(delayQueueName, delayQueueName+dlxRoutingPostfix, dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind delay queue %s: %w", delayQueueName, err)
	}

	_, err = ch.QueueDeclare(queueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": delayQueueName + dlxRoutingPostfix,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return nil
}

func (c *RabbitMqClient) ReceiveMessages() (<-chan QueueMessage, error) {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack, acknowledged after processing
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, err
	}

	output := make(chan QueueMessage)
	go func() {
		defer close(output)
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				message := QueueMessage{
					Body:          string(d.Body),
					Receipt:       strconv.FormatUint(d.DeliveryTag, 10),
					RetryAttempts: retryAttempts(d.Headers),
				}
				select {
				case output <- message:
				case <-c.stopCh:
					return
				}
			case <-c.stopCh:
				return
			}
		}
	}()

	return output, nil
}

func retryAttempts(headers amqp.Table) int32 {
	switch v := headers[retryAttemptsHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 0
	}
}

// DeleteMessage acknowledges the delivery identified by receipt.
func (c *RabbitMqClient) DeleteMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid receipt %q: %w", receipt, err)
	}
	return c.channel.Ack(deliveryTag, false)
}

func (c *RabbitMqClient) ReQueueMessage(ctx context.Context, message QueueMessage) error {
	deliveryTag, err := strconv.ParseUint(message.Receipt, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid receipt %q: %w", message.Receipt, err)
	}

	attempts := message.IncrementRetryAttempts()
	delayQueueName := c.queueName + delayedQueuePostfix
	if err := c.publish(ctx, delayQueueName, message.Body, attempts); err != nil {
		return fmt.Errorf("failed to requeue message: %w", err)
	}

	return c.channel.Ack(deliveryTag, false)
}

func (c *RabbitMqClient) SendMessage(ctx context.Context, messageBody string) error {
	return c.publish(ctx, c.queueName, messageBody, 0)
}

func (c *RabbitMqClient) publish(ctx context.Context, queueName, messageBody string, attempts int32) error {
	if c.channel == nil {
		return fmt.Errorf("rabbitmq channel not initialized")
	}
	return c.channel.PublishWithContext(ctx,
		"",        // default exchange routes by queue name
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         []byte(messageBody),
			Headers:      amqp.Table{retryAttemptsHeader: attempts},
		},
	)
}

func (c *RabbitMqClient) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if chErr := c.channel.Close(); chErr != nil {
			err = chErr
		}
		if connErr := c.connection.Close(); connErr != nil && err == nil {
			err = connErr
		}
	})
	return err
}

func (c *RabbitMqClient) GetQueueName() string {
	return c.queueName
}

func (c *RabbitMqClient) Ping() error {
	if c.connection.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	if c.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel is closed")
	}
	return nil
}
