package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/analysis"
	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/repository"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

type approvalFixture struct {
	Svc       *service.ApprovalService
	Approvals *repository.MemoryApprovalRepository
	Convs     *repository.MemoryConversationRepository
	Outreach  *repository.MemoryOutreachRepository
	Outbound  *repository.MemoryOutboundMessageRepository
	Audit     *repository.MemoryAuditRepository
	Queue     *recordingQueue
	Conv      *model.Conversation
}

func newApprovalFixture(t *testing.T, stage model.Stage) *approvalFixture {
	t.Helper()

	approvals := repository.NewMemoryApprovalRepository()
	convs := repository.NewMemoryConversationRepository()
	outreach := repository.NewMemoryOutreachRepository()
	outbound := repository.NewMemoryOutboundMessageRepository()
	audit := repository.NewMemoryAuditRepository()
	q := &recordingQueue{}

	sentAt := time.Now().Add(-time.Hour)
	rec := &model.OutreachRecord{
		CampaignID:       1,
		CreatorID:        7,
		Recipient:        "amara@example.com",
		Subject:          "Spring Launch partnership [ref:" + tokenA + "]",
		CorrelationToken: tokenA,
		Status:           model.OutreachReplied,
		SentAt:           &sentAt,
	}
	require.NoError(t, outreach.Create(rec))

	conv := &model.Conversation{
		OutreachID: rec.ID,
		CampaignID: 1,
		CreatorID:  7,
		Stage:      stage,
	}
	require.NoError(t, convs.Create(conv))

	return &approvalFixture{
		Svc: &service.ApprovalService{
			Approvals:     approvals,
			Conversations: convs,
			Outreach:      outreach,
			OutboundRepo:  outbound,
			Audit:         audit,
			Queue:         q,
			Logger:        zap.NewNop(),
		},
		Approvals: approvals, Convs: convs, Outreach: outreach,
		Outbound: outbound, Audit: audit, Queue: q, Conv: conv,
	}
}

func enqueueEscalation(t *testing.T, fx *approvalFixture, nextStage model.Stage, suggested string) *model.ApprovalRequest {
	t.Helper()
	req, err := fx.Svc.Enqueue(fx.Conv, analysis.Classification{Intent: analysis.IntentNegotiation}, "Could we do $3200 instead?", service.Decision{
		NextStage: nextStage,
		Action: service.Action{
			Type:         service.ActionEscalate,
			Priority:     model.PriorityHigh,
			Reason:       "counter-offer terms need review",
			ResponseText: suggested,
		},
	})
	require.NoError(t, err)
	return req
}

func TestEnqueueCreatesPendingRequest(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)

	req := enqueueEscalation(t, fx, model.StageNegotiating, "")

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.ApprovalPending, req.Status)
	assert.Equal(t, model.PriorityHigh, req.Priority)
	assert.Equal(t, "Could we do $3200 instead?", req.ReplyText)

	pending, err := fx.Svc.ListPending(repository.ApprovalFilter{CampaignID: 1})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)
}

func TestResolveApproveSendsResponseAndAdvancesStage(t *testing.T) {
	fx := newApprovalFixture(t, model.StageTermsAgreed)
	req := enqueueEscalation(t, fx, model.StageContractPending, "")

	conv, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "We'll send the contract over today!", "", "ops@crewpact.io")
	require.NoError(t, err)
	assert.Equal(t, model.StageContractPending, conv.Stage)

	// operator message recorded on the thread
	msgs, err := fx.Convs.ListMessages(fx.Conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, model.OriginOperator, msgs[0].Origin)
	assert.Equal(t, "We'll send the contract over today!", msgs[0].Body)

	// and queued for delivery
	assert.Equal(t, 1, fx.Queue.count())
	outbound, err := fx.Outbound.GetByID(1)
	require.NoError(t, err)
	require.NotNil(t, outbound)
	assert.Equal(t, "amara@example.com", outbound.Recipient)
	assert.Contains(t, outbound.Subject, "Re: ")

	stored, err := fx.Approvals.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, stored.Status)
	assert.Equal(t, "ops@crewpact.io", stored.ResolvedBy)
	assert.NotNil(t, stored.ResolvedAt)
}

func TestResolveApproveFallsBackToSuggestedReply(t *testing.T) {
	fx := newApprovalFixture(t, model.StageInitialContact)
	req := enqueueEscalation(t, fx, model.StageInterested, "Hi Amara, here are the details!")

	_, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "", "", "ops@crewpact.io")
	require.NoError(t, err)

	msgs, err := fx.Convs.ListMessages(fx.Conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi Amara, here are the details!", msgs[0].Body)
}

func TestResolveRejectLeavesStageUnchanged(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)
	req := enqueueEscalation(t, fx, model.StageTermsAgreed, "")

	conv, err := fx.Svc.Resolve(req.ID, service.VerdictReject, "", "terms too far off", "ops@crewpact.io")
	require.NoError(t, err)
	assert.Equal(t, model.StageNegotiating, conv.Stage)

	// nothing goes out on reject
	assert.Equal(t, 0, fx.Queue.count())

	msgs, err := fx.Convs.ListMessages(fx.Conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "terms too far off")

	stored, err := fx.Approvals.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, stored.Status)
}

func TestResolveApproveRefusesClosedConversation(t *testing.T) {
	// The creator declined while the escalation sat in the queue. Approving
	// it must not reopen the thread or send them anything.
	fx := newApprovalFixture(t, model.StageInitialContact)
	req := enqueueEscalation(t, fx, model.StageInterested, "Sounds great, here are the details!")
	require.NoError(t, fx.Convs.UpdateStage(fx.Conv.ID, model.StageRejected))

	_, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "", "", "ops@crewpact.io")
	var closed *appErrors.ErrConversationClosed
	require.True(t, errors.As(err, &closed))

	conv, err := fx.Convs.GetByID(fx.Conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageRejected, conv.Stage)
	assert.Equal(t, 0, fx.Queue.count())

	// the request stays pending so the operator can still reject it
	stale, err := fx.Approvals.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, stale.Status)
}

func TestResolveApproveStageWriteRequiresAuditEntry(t *testing.T) {
	fx := newApprovalFixture(t, model.StageTermsAgreed)
	req := enqueueEscalation(t, fx, model.StageContractPending, "We'll send the agreement over!")
	fx.Svc.Audit = &failingAuditRepo{MemoryAuditRepository: fx.Audit, failAction: model.AuditStageChanged}

	_, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "", "", "ops@crewpact.io")
	require.Error(t, err)

	conv, err := fx.Convs.GetByID(fx.Conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageTermsAgreed, conv.Stage)
}

func TestResolveTwiceFailsNotPending(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)
	req := enqueueEscalation(t, fx, model.StageNegotiating, "")

	_, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "ok", "", "ops@crewpact.io")
	require.NoError(t, err)

	_, err = fx.Svc.Resolve(req.ID, service.VerdictReject, "", "", "ops@crewpact.io")
	var notPending *appErrors.ErrApprovalNotPending
	assert.True(t, errors.As(err, &notPending))
}

func TestResolveUnknownRequest(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)

	_, err := fx.Svc.Resolve("no-such-request", service.VerdictApprove, "", "", "ops@crewpact.io")
	var notFound *appErrors.ErrApprovalNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestResolveUnknownVerdict(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)
	req := enqueueEscalation(t, fx, model.StageNegotiating, "")

	_, err := fx.Svc.Resolve(req.ID, "maybe", "", "", "ops@crewpact.io")
	assert.Error(t, err)

	// still pending after the bad verdict
	stored, err := fx.Approvals.GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, stored.Status)
}

func TestResolveAuditTrail(t *testing.T) {
	fx := newApprovalFixture(t, model.StageNegotiating)
	req := enqueueEscalation(t, fx, model.StageTermsAgreed, "")

	_, err := fx.Svc.Resolve(req.ID, service.VerdictApprove, "agreed", "", "ops@crewpact.io")
	require.NoError(t, err)

	counts, err := fx.Audit.CountByAction(1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[model.AuditApprovalCreated])
	assert.Equal(t, 1, counts[model.AuditApprovalResolved])
	assert.Equal(t, 1, counts[model.AuditStageChanged])
}
