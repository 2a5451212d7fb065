// internal/service/outreach_service.go
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/queue"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

type OutreachService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CreatorRepo  repository.CreatorRepositoryInterface
	OutreachRepo repository.OutreachRepositoryInterface
	OutboundRepo repository.OutboundMessageRepositoryInterface
	Audit        repository.AuditRepositoryInterface
	Queue        queue.Queue
	Logger       *zap.Logger
}

// Result struct for SendOutreach
type SendOutreachResult struct {
	CampaignID     int
	MessagesQueued int
	Status         string
	OutreachIDs    []int
	MessageIDs     []int
}

func (s *OutreachService) RenderPreview(campaignID, creatorID int, overrideTemplate *string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return "", err
	}
	if campaign == nil {
		return "", fmt.Errorf("campaign not found")
	}

	creator, err := s.CreatorRepo.GetByID(creatorID)
	if err != nil {
		return "", err
	}
	if creator == nil {
		return "", fmt.Errorf("creator not found")
	}

	template := campaign.BaseTemplate

	if overrideTemplate != nil && strings.TrimSpace(*overrideTemplate) != "" {
		template = *overrideTemplate
	}

	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("template cannot be empty")
	}

	return RenderTemplate(template, map[string]string{
		"name":          creator.Name,
		"platform":      creator.Platform,
		"handle":        creator.Handle,
		"niche":         creator.Niche,
		"campaign_name": campaign.Name,
	}), nil
}

// SendOutreach creates one outreach record per creator, embeds a correlation
// token into the subject so replies can be re-identified, and queues the
// rendered message for delivery. An empty creator list targets every known
// creator.
func (s *OutreachService) SendOutreach(campaignID int, creatorIDs []int) (*SendOutreachResult, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	if len(creatorIDs) == 0 {
		all, err := s.CreatorRepo.ListAll()
		if err != nil {
			return nil, err
		}
		for _, c := range all {
			creatorIDs = append(creatorIDs, c.ID)
		}
	}

	if campaign.Status != "draft" && campaign.Status != "scheduled" && campaign.Status != "active" {
		return nil, fmt.Errorf("outreach cannot be sent in campaign status: %s", campaign.Status)
	}

	result := &SendOutreachResult{
		CampaignID:     campaignID,
		MessagesQueued: 0,
		Status:         "active",
		OutreachIDs:    []int{},
		MessageIDs:     []int{},
	}

	for _, creatorID := range creatorIDs {
		creator, err := s.CreatorRepo.GetByID(creatorID)
		if err != nil || creator == nil {
			s.Logger.Warn("skipping creator", zap.Int("creator_id", creatorID), zap.Error(err))
			continue
		}

		rendered, err := s.RenderPreview(campaignID, creatorID, nil)
		if err != nil {
			s.Logger.Warn("failed to render outreach", zap.Int("creator_id", creatorID), zap.Error(err))
			continue
		}

		token := uuid.NewString()
		now := time.Now()
		record := &model.OutreachRecord{
			CampaignID:       campaignID,
			CreatorID:        creatorID,
			Recipient:        creator.Email,
			Subject:          fmt.Sprintf("%s partnership [ref:%s]", campaign.Name, token),
			CorrelationToken: token,
			Status:           model.OutreachSent,
			SentAt:           &now,
		}
		if err := s.OutreachRepo.Create(record); err != nil {
			s.Logger.Warn("failed to create outreach record", zap.Int("creator_id", creatorID), zap.Error(err))
			continue
		}

		outreachID := record.ID
		outbound := &model.OutboundMessage{
			OutreachID: &outreachID,
			Recipient:  record.Recipient,
			Subject:    record.Subject,
			Body:       rendered,
			Status:     "pending",
		}
		if err := s.OutboundRepo.Create(outbound); err != nil {
			s.Logger.Warn("failed to create outbound message", zap.Int("outreach_id", record.ID), zap.Error(err))
			continue
		}

		if err := s.Queue.Publish(queue.TopicDeliveries, outbound.ID); err != nil {
			s.Logger.Warn("failed to enqueue outbound message", zap.Int("message_id", outbound.ID), zap.Error(err))
			continue
		}

		payload, _ := json.Marshal(map[string]interface{}{"outreach_id": record.ID, "recipient": record.Recipient})
		if err := s.Audit.Append(&model.AuditEntry{
			CampaignID: campaignID,
			CreatorID:  creatorID,
			Actor:      "system",
			Action:     model.AuditOutreachSent,
			Payload:    string(payload),
		}); err != nil {
			return result, err
		}

		result.OutreachIDs = append(result.OutreachIDs, record.ID)
		result.MessageIDs = append(result.MessageIDs, outbound.ID)
		result.MessagesQueued++
	}

	if campaign.Status != "active" {
		if err := s.CampaignRepo.UpdateStatus(campaignID, "active"); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (s *OutreachService) CreateCampaign(name, channel, baseTemplate string, maxBudget, targetRate float64, scheduledAt *string) (*model.Campaign, error) {
	c := &model.Campaign{
		Name:         name,
		Channel:      channel,
		BaseTemplate: baseTemplate,
		MaxBudget:    maxBudget,
		TargetRate:   targetRate,
		Status:       "draft",
	}

	if scheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *scheduledAt)
		if err != nil {
			return nil, err
		}
		c.ScheduledAt = &t
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateCampaign applies partial edits to a campaign. Nil fields are left as
// they are.
func (s *OutreachService) UpdateCampaign(id int, name, baseTemplate, status *string, maxBudget, targetRate *float64) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, appErrors.NewCampaignNotFound(id)
	}

	if name != nil {
		campaign.Name = *name
	}
	if baseTemplate != nil {
		campaign.BaseTemplate = *baseTemplate
	}
	if status != nil {
		campaign.Status = *status
	}
	if maxBudget != nil {
		campaign.MaxBudget = *maxBudget
	}
	if targetRate != nil {
		campaign.TargetRate = *targetRate
	}

	if err := s.CampaignRepo.Update(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *OutreachService) ListCampaigns(page, pageSize int, channel, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, channel, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetails fetches a campaign by ID
func (s *OutreachService) GetCampaignDetails(id int) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(id)
}
