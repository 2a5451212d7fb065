// internal/service/negotiation_service.go
package service

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

// StateUpdate is a partial update merged into the stored negotiation state.
// Nil / zero fields leave the current value alone.
type StateUpdate struct {
	Status       string
	ProposedRate *float64
	MaxBudget    *float64
	TargetRate   *float64
	Flags        []string
}

type NegotiationService struct {
	Repo   repository.NegotiationRepositoryInterface
	Audit  repository.AuditRepositoryInterface
	Logger *zap.Logger
}

// RequiresHumanApproval is the escalation predicate. It is pure: the verdict
// depends only on the resulting state, never on call order.
//
// The budget check deliberately uses the highest rate ever seen, not the
// current offer, so a superseded high ask keeps the relationship flagged.
func RequiresHumanApproval(s *model.NegotiationState) bool {
	if len(s.Flags) > 0 {
		return true
	}
	if s.MaxBudget > 0 && s.HighestRate > s.MaxBudget*1.10 {
		return true
	}
	if s.Round > 3 {
		return true
	}
	if s.Status == model.NegotiationDeadlock || s.Status == model.NegotiationRejected {
		return true
	}
	return false
}

// Update loads or initializes the state for a relationship, merges the
// partial update, increments the round, recomputes the approval flag and
// persists. Every update appends an audit entry with the previous and new
// state.
func (s *NegotiationService) Update(campaignID, creatorID int, upd StateUpdate) (*model.NegotiationState, error) {
	state, err := s.Repo.Get(campaignID, creatorID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &model.NegotiationState{
			CampaignID: campaignID,
			CreatorID:  creatorID,
			Status:     model.NegotiationInitial,
			Round:      0,
		}
	}

	prevSnapshot, _ := json.Marshal(state)

	if upd.Status != "" {
		state.Status = upd.Status
	}
	if upd.ProposedRate != nil {
		rate := *upd.ProposedRate
		if state.HighestRate == 0 || rate > state.HighestRate {
			state.HighestRate = rate
		}
		if state.LowestRate == 0 || rate < state.LowestRate {
			state.LowestRate = rate
		}
	}
	if upd.MaxBudget != nil {
		state.MaxBudget = *upd.MaxBudget
	}
	if upd.TargetRate != nil {
		state.TargetRate = *upd.TargetRate
	}
	if len(upd.Flags) > 0 {
		state.Flags = append(state.Flags, upd.Flags...)
	}

	state.Round++
	state.RequiresHumanApproval = RequiresHumanApproval(state)

	if err := s.Repo.Save(state); err != nil {
		return nil, err
	}

	newSnapshot, _ := json.Marshal(state)
	entry := &model.AuditEntry{
		CampaignID: campaignID,
		CreatorID:  creatorID,
		Actor:      "system",
		Action:     model.AuditStateUpdated,
		Payload:    fmt.Sprintf(`{"previous":%s,"current":%s}`, prevSnapshot, newSnapshot),
	}
	if err := s.Audit.Append(entry); err != nil {
		return nil, err
	}

	s.Logger.Debug("negotiation state updated",
		zap.Int("campaign_id", campaignID),
		zap.Int("creator_id", creatorID),
		zap.Int("round", state.Round),
		zap.Bool("requires_human_approval", state.RequiresHumanApproval),
	)

	return state, nil
}

// Get returns the current snapshot. Reading never mutates state.
func (s *NegotiationService) Get(campaignID, creatorID int) (*model.NegotiationState, error) {
	state, err := s.Repo.Get(campaignID, creatorID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, appErrors.NewNegotiationNotFound(campaignID, creatorID)
	}
	return state, nil
}
