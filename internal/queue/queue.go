package queue

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/crewpact/creatorreach-backend/internal/repository"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// TopicDeliveries is where queued outbound messages go. The subsystem only
// decides content and timing; delivery itself happens behind this topic.
const TopicDeliveries = "outbound_deliveries"

// InMemoryQueue is a production-ready in-memory queue with retry
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			log.Printf("Job processed successfully: %+v\n", job.Payload)
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartDeliverySubscriber delivers queued outbound messages. Payloads are
// OutboundMessage IDs.
func StartDeliverySubscriber(q Queue, outboundRepo repository.OutboundMessageRepositoryInterface, send func(recipient, subject, body string) error) {
	go func() {
		err := q.Subscribe(TopicDeliveries, func(payload any) error {
			msgID, ok := payload.(int)
			if !ok {
				log.Println("⚠️ Invalid payload type, expected int")
				return nil // or return error to trigger retry
			}

			log.Println("📩 Processing queued outbound message ID:", msgID)

			msg, err := outboundRepo.GetByID(msgID)
			if err != nil {
				log.Println("⚠️ Failed to fetch message:", err)
				return err
			}
			if msg == nil {
				log.Println("⚠️ Message not found for ID:", msgID)
				return nil // no retry
			}

			if err := send(msg.Recipient, msg.Subject, msg.Body); err != nil {
				log.Println("⚠️ Failed to send message:", err)
				_ = outboundRepo.UpdateStatus(msgID, "failed", err.Error())
				return err // triggers retry in queue
			}

			if err := outboundRepo.UpdateStatus(msgID, "sent", ""); err != nil {
				log.Println("⚠️ Failed to update message status:", err)
				return err // retry
			}

			log.Println("✅ Message delivered:", msgID)
			return nil
		})

		if err != nil {
			log.Println("⚠️ Failed to start subscriber for", TopicDeliveries, ":", err)
		}
	}()
}

// MockSender simulates delivery with 90% success
func MockSender(recipient, subject, body string) error {
	r := rand.Float64()
	if r < 0.9 {
		return nil // success
	}
	return fmt.Errorf("mock sending failed")
}
