// internal/service/approval_service.go
package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/queue"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

// Verdicts accepted by Resolve.
const (
	VerdictApprove = "approve"
	VerdictReject  = "reject"
)

type ApprovalService struct {
	Approvals     repository.ApprovalRepositoryInterface
	Conversations repository.ConversationRepositoryInterface
	Outreach      repository.OutreachRepositoryInterface
	OutboundRepo  repository.OutboundMessageRepositoryInterface
	Audit         repository.AuditRepositoryInterface
	Queue         queue.Queue
	Logger        *zap.Logger
}

// Enqueue creates a pending approval request carrying the full context the
// approver needs: the reply, its classification with extracted terms, the
// suggested response and the stage to apply on approval.
func (s *ApprovalService) Enqueue(conv *model.Conversation, cls analysis.Classification, replyText string, decision Decision) (*model.ApprovalRequest, error) {
	clsSnapshot, _ := json.Marshal(cls)

	req := &model.ApprovalRequest{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		CampaignID:     conv.CampaignID,
		CreatorID:      conv.CreatorID,
		ReplyText:      replyText,
		Classification: string(clsSnapshot),
		SuggestedReply: decision.Action.ResponseText,
		NextStage:      decision.NextStage,
		Priority:       decision.Action.Priority,
		Reason:         decision.Action.Reason,
		Status:         model.ApprovalPending,
	}

	if err := s.Approvals.Create(req); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(req)
	if err := s.Audit.Append(&model.AuditEntry{
		CampaignID: conv.CampaignID,
		CreatorID:  conv.CreatorID,
		Actor:      "system",
		Action:     model.AuditApprovalCreated,
		Payload:    string(payload),
	}); err != nil {
		return nil, err
	}

	s.Logger.Info("approval request created",
		zap.String("request_id", req.ID),
		zap.Int("conversation_id", conv.ID),
		zap.String("priority", req.Priority),
		zap.String("reason", req.Reason),
	)
	return req, nil
}

// Resolve applies a human verdict. Approve appends the operator's message
// (or the suggested auto-response), advances the conversation to the stage
// recorded at enqueue time and queues the message for delivery. Reject
// appends a rejection marker and leaves the stage unchanged.
func (s *ApprovalService) Resolve(requestID, verdict, responseText, notes, resolvedBy string) (*model.Conversation, error) {
	req, err := s.Approvals.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, appErrors.NewApprovalNotFound(requestID)
	}
	if req.Status != model.ApprovalPending {
		return nil, appErrors.NewApprovalNotPending(requestID, req.Status)
	}

	conv, err := s.Conversations.GetByID(req.ConversationID)
	if err != nil {
		return nil, err
	}

	switch verdict {
	case VerdictApprove:
		if err := s.approve(req, conv, responseText, resolvedBy); err != nil {
			return nil, err
		}
		req.Status = model.ApprovalApproved
	case VerdictReject:
		marker := "escalation rejected by operator"
		if notes != "" {
			marker += ": " + notes
		}
		if err := s.Conversations.AppendMessage(&model.Message{
			ConversationID: conv.ID,
			Origin:         model.OriginOperator,
			Body:           marker,
		}); err != nil {
			return nil, err
		}
		req.Status = model.ApprovalRejected
	default:
		return nil, fmt.Errorf("unknown verdict: %s", verdict)
	}

	now := time.Now()
	req.ResolvedBy = resolvedBy
	req.Notes = notes
	req.ResolvedAt = &now
	if err := s.Approvals.MarkResolved(req); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]string{
		"request_id":  req.ID,
		"verdict":     verdict,
		"resolved_by": resolvedBy,
		"notes":       notes,
	})
	if err := s.Audit.Append(&model.AuditEntry{
		CampaignID: req.CampaignID,
		CreatorID:  req.CreatorID,
		Actor:      resolvedBy,
		Action:     model.AuditApprovalResolved,
		Payload:    string(payload),
	}); err != nil {
		return nil, err
	}

	return s.Conversations.GetByID(req.ConversationID)
}

func (s *ApprovalService) approve(req *model.ApprovalRequest, conv *model.Conversation, responseText, resolvedBy string) error {
	// A stale escalation can outlive the conversation it came from. Once the
	// creator has declined or signed, no more mail goes out; the request can
	// still be rejected to clear the queue.
	if conv.Stage.Terminal() {
		return appErrors.NewConversationClosed(conv.ID, string(conv.Stage))
	}

	text := responseText
	if text == "" {
		text = req.SuggestedReply
	}

	if text != "" {
		if err := s.Conversations.AppendMessage(&model.Message{
			ConversationID: conv.ID,
			Origin:         model.OriginOperator,
			Body:           text,
		}); err != nil {
			return err
		}

		outreach, err := s.Outreach.GetByID(conv.OutreachID)
		if err != nil {
			return err
		}
		if outreach != nil {
			convID := conv.ID
			outbound := &model.OutboundMessage{
				ConversationID: &convID,
				Recipient:      outreach.Recipient,
				Subject:        "Re: " + outreach.Subject,
				Body:           text,
				Status:         "pending",
			}
			if err := s.OutboundRepo.Create(outbound); err != nil {
				return err
			}
			if err := s.Queue.Publish(queue.TopicDeliveries, outbound.ID); err != nil {
				// Delivery is fire-and-forget; the row stays pending for a
				// later sweep.
				s.Logger.Warn("failed to queue approved response", zap.Error(err))
			}
		}
	}

	if req.NextStage != "" && req.NextStage != conv.Stage && conv.Stage.CanAdvanceTo(req.NextStage) {
		// Audit entry first: a failure here can leave an entry without a
		// stage move, never a stage move without an entry.
		stagePayload, _ := json.Marshal(map[string]string{
			"from": string(conv.Stage),
			"to":   string(req.NextStage),
		})
		if err := s.Audit.Append(&model.AuditEntry{
			CampaignID: conv.CampaignID,
			CreatorID:  conv.CreatorID,
			Actor:      resolvedBy,
			Action:     model.AuditStageChanged,
			Payload:    string(stagePayload),
		}); err != nil {
			return err
		}
		if err := s.Conversations.UpdateStage(conv.ID, req.NextStage); err != nil {
			return err
		}
	}
	return nil
}

// ListPending returns pending approval requests, optionally filtered.
func (s *ApprovalService) ListPending(filter repository.ApprovalFilter) ([]*model.ApprovalRequest, error) {
	return s.Approvals.ListPending(filter)
}
