// internal/service/conversation_service.go
//
// The inbound-reply pipeline: validate, match to the originating outreach,
// extract terms, classify, transition, then either queue an auto-response or
// escalate to a human. Replies for the same (campaign, creator) relationship
// are serialized behind a per-key lock; different relationships run in
// parallel. Once a reply is accepted it runs to completion, and every path —
// including drops and failures — leaves an audit entry.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/extract"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/queue"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

const analysisTimeout = 20 * time.Second

// InboundResult is what the caller of HandleInboundReply gets back.
type InboundResult struct {
	Matched           bool        `json:"matched"`
	ConversationID    int         `json:"conversation_id,omitempty"`
	NewStage          model.Stage `json:"new_stage,omitempty"`
	Action            ActionType  `json:"action"`
	ApprovalRequestID string      `json:"approval_request_id,omitempty"`
}

type ConversationService struct {
	Campaigns     repository.CampaignRepositoryInterface
	Creators      repository.CreatorRepositoryInterface
	Outreach      repository.OutreachRepositoryInterface
	Conversations repository.ConversationRepositoryInterface
	OutboundRepo  repository.OutboundMessageRepositoryInterface
	Audit         repository.AuditRepositoryInterface
	Matcher       *ThreadMatcher
	Negotiation   *NegotiationService
	Approvals     *ApprovalService
	Analyzer      analysis.Analyzer
	Queue         queue.Queue
	Logger        *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lockFor returns the mutex serializing one (campaign, creator) relationship.
func (s *ConversationService) lockFor(campaignID, creatorID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	key := relationshipKey(campaignID, creatorID)
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

func relationshipKey(campaignID, creatorID int) string {
	return fmt.Sprintf("%d:%d", campaignID, creatorID)
}

// HandleInboundReply runs one reply through the full pipeline.
func (s *ConversationService) HandleInboundReply(ctx context.Context, msg InboundMessage) (*InboundResult, error) {
	if strings.TrimSpace(msg.From) == "" {
		return nil, s.rejectInbound(msg, "missing sender")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return nil, s.rejectInbound(msg, "missing body")
	}

	outreach, err := s.Matcher.Match(msg)
	if err != nil {
		return nil, err
	}
	if outreach == nil {
		// Non-fatal: not every inbound message is a tracked reply.
		s.Logger.Info("inbound message matched no outreach, dropping",
			zap.String("from", msg.From),
			zap.String("subject", msg.Subject),
		)
		entry := &model.AuditEntry{Actor: "system", Action: model.AuditMatchFailed}
		// Pin the entry to the creator when the sender is known, so dropped
		// mail still shows up on their timeline.
		if creator, cerr := s.Creators.GetByEmail(msg.From); cerr == nil && creator != nil {
			entry.CreatorID = creator.ID
		}
		payload, _ := json.Marshal(map[string]string{"from": msg.From, "subject": msg.Subject})
		entry.Payload = string(payload)
		_ = s.Audit.Append(entry)
		return &InboundResult{Matched: false, Action: ActionNone}, nil
	}

	lock := s.lockFor(outreach.CampaignID, outreach.CreatorID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.Conversations.GetByOutreachID(outreach.ID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv = &model.Conversation{
			OutreachID: outreach.ID,
			CampaignID: outreach.CampaignID,
			CreatorID:  outreach.CreatorID,
			Stage:      model.StageInitialContact,
		}
		if err := s.Conversations.Create(conv); err != nil {
			return nil, err
		}
	}

	if outreach.Status != model.OutreachReplied {
		if err := s.Outreach.UpdateStatus(outreach.ID, model.OutreachReplied); err != nil {
			return nil, err
		}
	}

	replyPayload, _ := json.Marshal(map[string]interface{}{"conversation_id": conv.ID, "from": msg.From})
	if err := s.Audit.Append(&model.AuditEntry{
		CampaignID: conv.CampaignID,
		CreatorID:  conv.CreatorID,
		Actor:      "creator",
		Action:     model.AuditReplyReceived,
		Payload:    string(replyPayload),
	}); err != nil {
		return nil, err
	}

	cls := s.classify(ctx, conv, msg.Body)

	clsSnapshot, _ := json.Marshal(cls)
	if err := s.Conversations.AppendMessage(&model.Message{
		ConversationID: conv.ID,
		Origin:         model.OriginCreator,
		Body:           msg.Body,
		Classification: string(clsSnapshot),
	}); err != nil {
		return nil, err
	}

	rc := s.responseContext(conv)
	decision := Decide(conv.Stage, cls, msg.Body, rc)

	result := &InboundResult{
		Matched:        true,
		ConversationID: conv.ID,
		NewStage:       conv.Stage,
		Action:         decision.Action.Type,
	}

	switch decision.Action.Type {
	case ActionAutoRespond, ActionClose:
		if err := s.autoRespond(conv, outreach, decision); err != nil {
			return nil, err
		}
		result.NewStage = decision.NextStage
	case ActionEscalate:
		req, err := s.Approvals.Enqueue(conv, cls, msg.Body, decision)
		if err != nil {
			return nil, err
		}
		result.ApprovalRequestID = req.ID
	}

	if err := s.updateNegotiation(conv, cls, decision); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *ConversationService) rejectInbound(msg InboundMessage, reason string) error {
	payload, _ := json.Marshal(map[string]string{"from": msg.From, "subject": msg.Subject, "reason": reason})
	_ = s.Audit.Append(&model.AuditEntry{
		Actor:   "system",
		Action:  model.AuditInboundRejected,
		Payload: string(payload),
	})
	return appErrors.NewInvalidInbound(reason)
}

// classify calls the analysis oracle with its own timeout. Any failure
// degrades to the safe default, which always routes toward a human.
func (s *ConversationService) classify(ctx context.Context, conv *model.Conversation, body string) analysis.Classification {
	actx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	rc := s.responseContext(conv)
	cls, err := s.Analyzer.Analyze(actx, body, analysis.Context{
		Stage:        string(conv.Stage),
		CampaignName: rc.CampaignName,
		CreatorName:  rc.CreatorName,
	})
	if err != nil {
		s.Logger.Warn("analysis failed, using safe default",
			zap.Int("conversation_id", conv.ID),
			zap.Error(err),
		)
		payload, _ := json.Marshal(map[string]interface{}{"conversation_id": conv.ID, "error": err.Error()})
		_ = s.Audit.Append(&model.AuditEntry{
			CampaignID: conv.CampaignID,
			CreatorID:  conv.CreatorID,
			Actor:      "system",
			Action:     model.AuditAnalysisFailed,
			Payload:    string(payload),
		})
		return analysis.SafeDefault("analysis failed: "+err.Error(), extract.Extract(body))
	}
	return cls
}

func (s *ConversationService) responseContext(conv *model.Conversation) ResponseContext {
	rc := ResponseContext{}
	if campaign, err := s.Campaigns.GetByID(conv.CampaignID); err == nil && campaign != nil {
		rc.CampaignName = campaign.Name
	}
	if creator, err := s.Creators.GetByID(conv.CreatorID); err == nil && creator != nil {
		rc.CreatorName = creator.Name
	}
	return rc
}

func (s *ConversationService) autoRespond(conv *model.Conversation, outreach *model.OutreachRecord, decision Decision) error {
	if err := s.Conversations.AppendMessage(&model.Message{
		ConversationID: conv.ID,
		Origin:         model.OriginSystem,
		Body:           decision.Action.ResponseText,
	}); err != nil {
		return err
	}

	convID := conv.ID
	outbound := &model.OutboundMessage{
		ConversationID: &convID,
		Recipient:      outreach.Recipient,
		Subject:        "Re: " + outreach.Subject,
		Body:           decision.Action.ResponseText,
		Status:         "pending",
	}
	if err := s.OutboundRepo.Create(outbound); err != nil {
		return err
	}
	if err := s.Queue.Publish(queue.TopicDeliveries, outbound.ID); err != nil {
		s.Logger.Warn("failed to queue auto-response", zap.Error(err))
	}

	payload, _ := json.Marshal(map[string]interface{}{"conversation_id": conv.ID, "outbound_id": outbound.ID})
	if err := s.Audit.Append(&model.AuditEntry{
		CampaignID: conv.CampaignID,
		CreatorID:  conv.CreatorID,
		Actor:      "system",
		Action:     model.AuditAutoResponse,
		Payload:    string(payload),
	}); err != nil {
		return err
	}

	if decision.NextStage != conv.Stage && conv.Stage.CanAdvanceTo(decision.NextStage) {
		// Audit entry first: a failure here can leave an entry without a
		// stage move, never a stage move without an entry.
		stagePayload, _ := json.Marshal(map[string]string{"from": string(conv.Stage), "to": string(decision.NextStage)})
		if err := s.Audit.Append(&model.AuditEntry{
			CampaignID: conv.CampaignID,
			CreatorID:  conv.CreatorID,
			Actor:      "system",
			Action:     model.AuditStageChanged,
			Payload:    string(stagePayload),
		}); err != nil {
			return err
		}
		if err := s.Conversations.UpdateStage(conv.ID, decision.NextStage); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConversationService) updateNegotiation(conv *model.Conversation, cls analysis.Classification, decision Decision) error {
	upd := StateUpdate{}

	if cls.ExtractedTerms.HighestRate > 0 {
		rate := cls.ExtractedTerms.HighestRate
		upd.ProposedRate = &rate
	}

	if campaign, err := s.Campaigns.GetByID(conv.CampaignID); err == nil && campaign != nil {
		if campaign.MaxBudget > 0 {
			budget := campaign.MaxBudget
			upd.MaxBudget = &budget
		}
		if campaign.TargetRate > 0 {
			target := campaign.TargetRate
			upd.TargetRate = &target
		}
	}

	switch {
	case decision.NextStage == model.StageRejected:
		upd.Status = model.NegotiationRejected
	case cls.Intent == analysis.IntentAgreement:
		upd.Status = model.NegotiationAccepted
	case cls.Intent == analysis.IntentNegotiation || decision.NextStage == model.StageNegotiating:
		// An escalated counter-offer keeps NextStage at the current stage, so
		// the intent alone marks the state.
		upd.Status = model.NegotiationCounterOffer
	}

	if cls.RiskLevel == "high" {
		upd.Flags = append(upd.Flags, "high risk reply")
	}

	_, err := s.Negotiation.Update(conv.CampaignID, conv.CreatorID, upd)
	return err
}

// MarkContractSent records that the (out-of-scope) contract subsystem has
// dispatched the agreement, moving contract_pending to contract_sent.
func (s *ConversationService) MarkContractSent(conversationID int) (*model.Conversation, error) {
	conv, err := s.Conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(conv.CampaignID, conv.CreatorID)
	lock.Lock()
	defer lock.Unlock()

	if conv.Stage != model.StageContractPending {
		return nil, appErrors.NewInvalidInbound("conversation not awaiting contract dispatch")
	}

	payload, _ := json.Marshal(map[string]string{"from": string(model.StageContractPending), "to": string(model.StageContractSent)})
	if err := s.Audit.Append(&model.AuditEntry{
		CampaignID: conv.CampaignID,
		CreatorID:  conv.CreatorID,
		Actor:      "system",
		Action:     model.AuditContractMarked,
		Payload:    string(payload),
	}); err != nil {
		return nil, err
	}
	if err := s.Conversations.UpdateStage(conv.ID, model.StageContractSent); err != nil {
		return nil, err
	}

	return s.Conversations.GetByID(conversationID)
}
