package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartRegistrationConsumer connects to the given broker, declares the
// durable registration.events queue and consumes it forever, appending each
// message to logs/registrations.log.  It runs a reconnect loop with
// exponential backoff and never returns under normal operation; malformed
// messages are rejected without requeue so a poison message cannot wedge the
// queue.
func StartRegistrationConsumer(url string) error {
	url = brokerURL(url)

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("registration-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("registration-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("registration-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(registrationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(registrationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("registration-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // do not requeue, avoids tight redelivery loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev RegistrationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "registrations.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] registration %s | id=%s | event_id=%d | event=%q | date=%s | user_id=%d",
		ev.OccurredAt, ev.Kind, ev.RegistrationID, ev.EventID, ev.EventTitle, ev.EventDate, ev.UserID)
	if ev.Kind == KindWaitlisted {
		line += fmt.Sprintf(" | waitlist_rank=%d", ev.WaitlistRank)
	}
	line += "\n"

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
