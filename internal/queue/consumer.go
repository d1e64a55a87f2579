package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartReservationConsumer consumes reservation.created events and
// appends them to logs/reservation.log.  It reconnects with a fixed
// backoff whenever the broker connection drops, so the server can
// start before RabbitMQ is up.
func StartReservationConsumer(amqpURL string) {
	for {
		if err := consumeOnce(amqpURL); err != nil {
			log.Printf("reservation consumer: %v (retrying in 5s)", err)
		}
		time.Sleep(5 * time.Second)
	}
}

func consumeOnce(amqpURL string) error {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(ReservationCreatedQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	logFile, err := openReservationLog()
	if err != nil {
		return err
	}
	defer logFile.Close()

	for d := range deliveries {
		var ev ReservationCreatedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			// malformed payload, drop it
			_ = d.Nack(false, false)
			continue
		}
		line := fmt.Sprintf("%s reservation=%d user=%d tickets=%d\n",
			ev.CreatedAt.UTC().Format(time.RFC3339), ev.ReservationID, ev.UserID, len(ev.Tickets))
		if _, err := logFile.WriteString(line); err != nil {
			_ = d.Nack(false, true)
			return fmt.Errorf("write log: %w", err)
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func openReservationLog() (*os.File, error) {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return nil, fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "reservation.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
