// internal/model/outbound_message.go
package model

import "time"

type OutboundMessage struct {
	ID             int       `db:"id" json:"id"`
	OutreachID     *int      `db:"outreach_id" json:"outreach_id,omitempty"`
	ConversationID *int      `db:"conversation_id" json:"conversation_id,omitempty"`
	Recipient      string    `db:"recipient" json:"recipient"`
	Subject        string    `db:"subject" json:"subject"`
	Body           string    `db:"body" json:"body"`
	Status         string    `db:"status" json:"status"` // pending, sent, failed
	LastError      string    `db:"last_error,omitempty" json:"last_error,omitempty"`
	RetryCount     int       `db:"retry_count" json:"retry_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
