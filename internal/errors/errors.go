// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrConversationNotFound is returned when a conversation id is unknown.
type ErrConversationNotFound struct {
	ConversationID int
}

func (e *ErrConversationNotFound) Error() string {
	return fmt.Sprintf("conversation with ID %d not found", e.ConversationID)
}

func NewConversationNotFound(id int) error {
	return &ErrConversationNotFound{ConversationID: id}
}

// ErrNegotiationNotFound is returned when no state exists for a relationship.
type ErrNegotiationNotFound struct {
	CampaignID int
	CreatorID  int
}

func (e *ErrNegotiationNotFound) Error() string {
	return fmt.Sprintf("no negotiation state for campaign %d, creator %d", e.CampaignID, e.CreatorID)
}

func NewNegotiationNotFound(campaignID, creatorID int) error {
	return &ErrNegotiationNotFound{CampaignID: campaignID, CreatorID: creatorID}
}

// ErrApprovalNotFound is returned when an approval request id is unknown.
type ErrApprovalNotFound struct {
	RequestID string
}

func (e *ErrApprovalNotFound) Error() string {
	return fmt.Sprintf("approval request %s not found", e.RequestID)
}

func NewApprovalNotFound(id string) error {
	return &ErrApprovalNotFound{RequestID: id}
}

// ErrApprovalNotPending is returned when resolving an already-resolved request.
type ErrApprovalNotPending struct {
	RequestID string
	Status    string
}

func (e *ErrApprovalNotPending) Error() string {
	return fmt.Sprintf("approval request %s already resolved (status %s)", e.RequestID, e.Status)
}

func NewApprovalNotPending(id, status string) error {
	return &ErrApprovalNotPending{RequestID: id, Status: status}
}

// ErrConversationClosed is returned when an action targets a conversation
// already in a terminal stage.
type ErrConversationClosed struct {
	ConversationID int
	Stage          string
}

func (e *ErrConversationClosed) Error() string {
	return fmt.Sprintf("conversation %d is closed (stage %s)", e.ConversationID, e.Stage)
}

func NewConversationClosed(id int, stage string) error {
	return &ErrConversationClosed{ConversationID: id, Stage: stage}
}

// ErrInvalidInbound is returned for malformed inbound payloads, before any
// matching is attempted.
type ErrInvalidInbound struct {
	Reason string
}

func (e *ErrInvalidInbound) Error() string {
	return fmt.Sprintf("invalid inbound message: %s", e.Reason)
}

func NewInvalidInbound(reason string) error {
	return &ErrInvalidInbound{Reason: reason}
}
