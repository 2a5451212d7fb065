package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/repository"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

func newOutreachService() (*service.OutreachService, *mockCampaignRepo, *repository.MemoryOutreachRepository, *repository.MemoryAuditRepository, *recordingQueue) {
	campaigns := &mockCampaignRepo{campaigns: map[int]*model.Campaign{
		1: {
			ID:           1,
			Name:         "Spring Launch",
			Status:       "draft",
			BaseTemplate: "Hi {name}, we love your {niche} content on {platform} and would like to partner for {campaign_name}!",
			MaxBudget:    2000,
		},
	}}
	creators := &mockCreatorRepo{creators: map[int]*model.Creator{
		7: {ID: 7, Name: "Amara", Email: "amara@example.com", Platform: "youtube", Handle: "@amaracooks", Niche: "cooking"},
		8: {ID: 8, Name: "Ben", Email: "ben@example.com", Platform: "tiktok", Handle: "@benlifts", Niche: "fitness"},
	}}
	outreach := repository.NewMemoryOutreachRepository()
	audit := repository.NewMemoryAuditRepository()
	q := &recordingQueue{}

	svc := &service.OutreachService{
		CampaignRepo: campaigns,
		CreatorRepo:  creators,
		OutreachRepo: outreach,
		OutboundRepo: repository.NewMemoryOutboundMessageRepository(),
		Audit:        audit,
		Queue:        q,
		Logger:       zap.NewNop(),
	}
	return svc, campaigns, outreach, audit, q
}

func TestRenderPreviewFillsCreatorPlaceholders(t *testing.T) {
	svc, _, _, _, _ := newOutreachService()

	rendered, err := svc.RenderPreview(1, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi Amara, we love your cooking content on youtube and would like to partner for Spring Launch!", rendered)
}

func TestRenderPreviewOverrideTemplate(t *testing.T) {
	svc, _, _, _, _ := newOutreachService()

	override := "Hey {handle}, quick note about {campaign_name}."
	rendered, err := svc.RenderPreview(1, 7, &override)
	require.NoError(t, err)
	assert.Equal(t, "Hey @amaracooks, quick note about Spring Launch.", rendered)
}

func TestRenderPreviewUnknownForMissingFields(t *testing.T) {
	svc, campaigns, _, _, _ := newOutreachService()
	campaigns.campaigns[1].BaseTemplate = "Hi {name} on {platform}"

	// creator with empty fields
	svcCreators := svc.CreatorRepo.(*mockCreatorRepo)
	svcCreators.creators[9] = &model.Creator{ID: 9, Email: "x@example.com"}

	rendered, err := svc.RenderPreview(1, 9, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hi <unknown> on <unknown>", rendered)
}

func TestSendOutreachEmbedsUniqueCorrelationTokens(t *testing.T) {
	svc, campaigns, outreach, audit, q := newOutreachService()

	result, err := svc.SendOutreach(1, []int{7, 8})
	require.NoError(t, err)
	assert.Equal(t, 2, result.MessagesQueued)
	require.Len(t, result.OutreachIDs, 2)

	seen := map[string]bool{}
	for _, id := range result.OutreachIDs {
		rec, err := outreach.GetByID(id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, model.OutreachSent, rec.Status)
		assert.NotNil(t, rec.SentAt)
		require.NotEmpty(t, rec.CorrelationToken)
		assert.Contains(t, rec.Subject, "[ref:"+rec.CorrelationToken+"]")
		assert.False(t, seen[rec.CorrelationToken], "correlation tokens must be unique")
		seen[rec.CorrelationToken] = true
	}

	// one delivery queued per creator
	assert.Equal(t, 2, q.count())

	counts, err := audit.CountByAction(1)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[model.AuditOutreachSent])

	// campaign activated after the first send
	assert.Equal(t, []string{"active"}, campaigns.statusUpdates)
}

func TestSendOutreachDefaultsToAllCreators(t *testing.T) {
	svc, _, outreach, _, q := newOutreachService()

	result, err := svc.SendOutreach(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.MessagesQueued)
	assert.Equal(t, 2, q.count())

	recipients := map[string]bool{}
	for _, id := range result.OutreachIDs {
		rec, err := outreach.GetByID(id)
		require.NoError(t, err)
		require.NotNil(t, rec)
		recipients[rec.Recipient] = true
	}
	assert.True(t, recipients["amara@example.com"])
	assert.True(t, recipients["ben@example.com"])
}

func TestSendOutreachSkipsUnknownCreators(t *testing.T) {
	svc, _, _, _, q := newOutreachService()

	result, err := svc.SendOutreach(1, []int{7, 999})
	require.NoError(t, err)
	assert.Equal(t, 1, result.MessagesQueued)
	assert.Equal(t, 1, q.count())
}

func TestSendOutreachRejectsCompletedCampaign(t *testing.T) {
	svc, campaigns, _, _, _ := newOutreachService()
	campaigns.campaigns[1].Status = "completed"

	_, err := svc.SendOutreach(1, []int{7})
	assert.Error(t, err)
}

func TestUpdateCampaignPartialEdit(t *testing.T) {
	svc, campaigns, _, _, _ := newOutreachService()

	budget := 3500.0
	updated, err := svc.UpdateCampaign(1, nil, nil, nil, &budget, nil)
	require.NoError(t, err)
	assert.Equal(t, 3500.0, updated.MaxBudget)
	// untouched fields survive
	assert.Equal(t, "Spring Launch", updated.Name)
	assert.Equal(t, "draft", updated.Status)
	assert.Equal(t, 3500.0, campaigns.campaigns[1].MaxBudget)
}

func TestUpdateCampaignUnknownID(t *testing.T) {
	svc, _, _, _, _ := newOutreachService()

	name := "Summer Launch"
	_, err := svc.UpdateCampaign(404, &name, nil, nil, nil, nil)
	var notFound *appErrors.ErrCampaignNotFound
	assert.True(t, errors.As(err, &notFound))
}
