// internal/model/negotiation.go
package model

import "time"

// Negotiation statuses. Free-form labels, these are the ones the engine sets.
const (
	NegotiationInitial      = "initial"
	NegotiationCounterOffer = "counter_offer"
	NegotiationDeadlock     = "deadlock"
	NegotiationAccepted     = "accepted"
	NegotiationRejected     = "rejected"
)

// NegotiationState is the working memory of one (campaign, creator)
// relationship. Round increments on every update; RequiresHumanApproval is
// recomputed from the resulting state on every write, never set directly.
type NegotiationState struct {
	ID                    int       `db:"id" json:"id"`
	CampaignID            int       `db:"campaign_id" json:"campaign_id"`
	CreatorID             int       `db:"creator_id" json:"creator_id"`
	Status                string    `db:"status" json:"status"`
	HighestRate           float64   `db:"highest_rate" json:"highest_rate"`
	LowestRate            float64   `db:"lowest_rate" json:"lowest_rate"`
	MaxBudget             float64   `db:"max_budget" json:"max_budget"`
	TargetRate            float64   `db:"target_rate" json:"target_rate"`
	Round                 int       `db:"round" json:"round"`
	RequiresHumanApproval bool      `db:"requires_human_approval" json:"requires_human_approval"`
	Flags                 []string  `db:"flags" json:"flags"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}
