// internal/model/outreach.go
package model

import "time"

// Delivery statuses for an outreach record. Status only moves forward;
// a record is never deleted, only superseded in status.
const (
	OutreachDraft   = "draft"
	OutreachSent    = "sent"
	OutreachOpened  = "opened"
	OutreachReplied = "replied"
	OutreachFailed  = "failed"
)

type OutreachRecord struct {
	ID               int        `db:"id" json:"id"`
	CampaignID       int        `db:"campaign_id" json:"campaign_id"`
	CreatorID        int        `db:"creator_id" json:"creator_id"`
	Recipient        string     `db:"recipient" json:"recipient"`
	Subject          string     `db:"subject" json:"subject"`
	CorrelationToken string     `db:"correlation_token" json:"correlation_token"`
	Status           string     `db:"status" json:"status"`
	Notes            string     `db:"notes" json:"notes,omitempty"`
	SentAt           *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}
