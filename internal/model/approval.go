// internal/model/approval.go
package model

import "time"

// Approval request statuses and priorities.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ApprovalRequest is a unit of work awaiting a human verdict. Created only
// by the stage transition path, resolved only by an operator, never deleted.
type ApprovalRequest struct {
	ID             string     `db:"id" json:"id"`
	ConversationID int        `db:"conversation_id" json:"conversation_id"`
	CampaignID     int        `db:"campaign_id" json:"campaign_id"`
	CreatorID      int        `db:"creator_id" json:"creator_id"`
	ReplyText      string     `db:"reply_text" json:"reply_text"`
	Classification string     `db:"classification" json:"classification"` // JSON snapshot
	SuggestedReply string     `db:"suggested_reply" json:"suggested_reply,omitempty"`
	NextStage      Stage      `db:"next_stage" json:"next_stage"`
	Priority       string     `db:"priority" json:"priority"`
	Reason         string     `db:"reason" json:"reason"`
	Status         string     `db:"status" json:"status"`
	ResolvedBy     string     `db:"resolved_by" json:"resolved_by,omitempty"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}
