// internal/model/audit.go
package model

import "time"

// Audit action types recorded by the negotiation subsystem.
const (
	AuditOutreachSent     = "outreach_sent"
	AuditReplyReceived    = "reply_received"
	AuditMatchFailed      = "match_failed"
	AuditAnalysisFailed   = "analysis_failed"
	AuditStageChanged     = "stage_changed"
	AuditStateUpdated     = "state_updated"
	AuditAutoResponse     = "auto_response_queued"
	AuditApprovalCreated  = "approval_created"
	AuditApprovalResolved = "approval_resolved"
	AuditInboundRejected  = "inbound_rejected"
	AuditContractMarked   = "contract_sent_marked"
)

// AuditEntry is one immutable log line. Payload is a JSON snapshot of
// whatever the action affected.
type AuditEntry struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	CreatorID  int       `db:"creator_id" json:"creator_id"`
	Actor      string    `db:"actor" json:"actor"`
	Action     string    `db:"action" json:"action"`
	Payload    string    `db:"payload" json:"payload"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AnalyticsReport is derived from the audit log and current stores on every
// read. Nothing here is cached.
type AnalyticsReport struct {
	CampaignID        int            `json:"campaign_id"`
	CountsByAction    map[string]int `json:"counts_by_action"`
	OutreachSent      int            `json:"outreach_sent"`
	RepliesReceived   int            `json:"replies_received"`
	ResponseRate      float64        `json:"response_rate"`
	AverageRounds     float64        `json:"average_rounds"`
	AvgResolutionSecs float64        `json:"avg_resolution_secs"`
	PendingApprovals  int            `json:"pending_approvals"`
}
