// internal/model/conversation.go
package model

import "time"

// Stage is the lifecycle position of a conversation. Stages only move
// forward; the sole backward path is an explicit human reject verdict.
type Stage string

const (
	StageInitialContact  Stage = "initial_contact"
	StageInterested      Stage = "interested"
	StageNegotiating     Stage = "negotiating"
	StageTermsAgreed     Stage = "terms_agreed"
	StageContractPending Stage = "contract_pending"
	StageContractSent    Stage = "contract_sent"
	StageContractSigned  Stage = "contract_signed"
	StageRejected        Stage = "rejected"
)

// stageRank orders stages for the monotonicity check. Rejected is terminal
// but reachable from anywhere, so it sits outside the ladder.
var stageRank = map[Stage]int{
	StageInitialContact:  0,
	StageInterested:      1,
	StageNegotiating:     2,
	StageTermsAgreed:     3,
	StageContractPending: 4,
	StageContractSent:    5,
	StageContractSigned:  6,
}

// Terminal reports whether no further automated transition occurs.
func (s Stage) Terminal() bool {
	return s == StageContractSigned || s == StageRejected
}

// CanAdvanceTo reports whether moving to next would not regress the stage.
// Terminal stages never advance; a closed conversation stays closed.
func (s Stage) CanAdvanceTo(next Stage) bool {
	if s.Terminal() {
		return false
	}
	if next == StageRejected {
		return true
	}
	return stageRank[next] >= stageRank[s]
}

// Message origins.
const (
	OriginCreator  = "creator"
	OriginSystem   = "automated-system"
	OriginOperator = "human-operator"
)

type Conversation struct {
	ID             int       `db:"id" json:"id"`
	OutreachID     int       `db:"outreach_id" json:"outreach_id"`
	CampaignID     int       `db:"campaign_id" json:"campaign_id"`
	CreatorID      int       `db:"creator_id" json:"creator_id"`
	Stage          Stage     `db:"stage" json:"stage"`
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Message is one turn in a conversation. Immutable once created.
type Message struct {
	ID             int       `db:"id" json:"id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	Origin         string    `db:"origin" json:"origin"`
	Body           string    `db:"body" json:"body"`
	Classification string    `db:"classification" json:"classification,omitempty"` // JSON snapshot
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
