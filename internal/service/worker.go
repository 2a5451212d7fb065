package service

import (
	"log"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

// DeliveryRepo defines the methods the worker needs
type DeliveryRepo interface {
	GetByID(id int) (*model.OutboundMessage, error)
	Update(msg *model.OutboundMessage) error
}

// Worker processes outbound delivery jobs
type Worker struct {
	OutboundRepo DeliveryRepo
	JobChan      <-chan int
	SendFunc     func(recipient, subject, body string) bool
}

// Constructor
func NewWorker(repo DeliveryRepo, jobChan <-chan int, sendFunc func(recipient, subject, body string) bool) *Worker {
	return &Worker{
		OutboundRepo: repo,
		JobChan:      jobChan,
		SendFunc:     sendFunc,
	}
}

// Start begins processing jobs
func (w *Worker) Start() {
	for jobID := range w.JobChan {
		msg, err := w.OutboundRepo.GetByID(jobID)
		if err != nil {
			log.Println("Failed to get message:", err)
			continue
		}
		if msg == nil {
			log.Println("Message not found for job:", jobID)
			continue
		}

		success := w.SendFunc(msg.Recipient, msg.Subject, msg.Body)
		if success {
			msg.Status = "sent"
			msg.LastError = ""
		} else {
			msg.Status = "failed"
			msg.LastError = "send failed"
			msg.RetryCount++
		}

		w.OutboundRepo.Update(msg)
	}
}
