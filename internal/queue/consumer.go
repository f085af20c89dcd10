package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Ledger appends one human-readable line per booking event to a file.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// NewLedger writes to path, creating its directory on first use.
func NewLedger(path string) *Ledger {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("logs", "ledger.log")
	}
	return &Ledger{path: path}
}

// Handle decodes body and appends it to the ledger.
func (l *Ledger) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event without booking_id")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("mkdir ledger dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()
	return writeLine(f, ev)
}

func writeLine(w io.Writer, ev BookingEvent) error {
	line := fmt.Sprintf("[%s] Booking %s | booking_id=%s | event_id=%s | event=%q | organizer_id=%d | vendor_id=%d | total=%d paise | commission=%d paise\n",
		ev.OccurredAt, ev.Status, ev.BookingID, ev.EventID, ev.EventName, ev.OrganizerID, ev.VendorID, ev.TotalAmountPaise, ev.CommissionPaise)
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// StartLedgerConsumer connects to the broker at url, declares every booking
// queue and feeds deliveries to the ledger. It reconnects with exponential
// backoff and only returns once ctx is cancelled. A message that cannot be
// handled is rejected without requeue so it cannot loop.
func StartLedgerConsumer(ctx context.Context, url string, ledger *Ledger) error {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ledger-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, ledger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("ledger-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, ledger *Ledger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ledger-consumer: set QoS failed: %v", err)
	}

	deliveries := make(chan amqp.Delivery)
	// done releases the forwarders when this loop returns for any reason
	done := make(chan struct{})
	defer close(done)

	var wg sync.WaitGroup
	for _, name := range Queues {
		if err := declare(ch, name); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			forward(ctx, done, msgs, deliveries)
		}()
	}
	go func() {
		wg.Wait()
		close(deliveries)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := ledger.Handle(d.Body); err != nil {
				log.Printf("ledger-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// forward copies msgs into out until msgs closes, ctx ends or done closes.
func forward(ctx context.Context, done <-chan struct{}, msgs <-chan amqp.Delivery, out chan<- amqp.Delivery) {
	for d := range msgs {
		select {
		case out <- d:
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
