// internal/service/analytics_service.go
package service

import (
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/repository"
)

// AnalyticsService derives campaign analytics from the audit log and the
// current stores on every call. Nothing is cached: the report always
// reflects the log as written.
type AnalyticsService struct {
	Audit         repository.AuditRepositoryInterface
	Conversations repository.ConversationRepositoryInterface
	Negotiations  repository.NegotiationRepositoryInterface
	Approvals     repository.ApprovalRepositoryInterface
}

func (s *AnalyticsService) Report(campaignID int) (*model.AnalyticsReport, error) {
	counts, err := s.Audit.CountByAction(campaignID)
	if err != nil {
		return nil, err
	}

	report := &model.AnalyticsReport{
		CampaignID:      campaignID,
		CountsByAction:  counts,
		OutreachSent:    counts[model.AuditOutreachSent],
		RepliesReceived: counts[model.AuditReplyReceived],
	}

	if report.OutreachSent > 0 {
		report.ResponseRate = float64(report.RepliesReceived) / float64(report.OutreachSent)
	}

	states, err := s.Negotiations.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	if len(states) > 0 {
		total := 0
		for _, st := range states {
			total += st.Round
		}
		report.AverageRounds = float64(total) / float64(len(states))
	}

	convs, err := s.Conversations.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}
	terminal := 0
	var totalSecs float64
	for _, c := range convs {
		if c.Stage.Terminal() {
			terminal++
			totalSecs += c.LastActivityAt.Sub(c.CreatedAt).Seconds()
		}
	}
	if terminal > 0 {
		report.AvgResolutionSecs = totalSecs / float64(terminal)
	}

	pending, err := s.Approvals.CountPending(campaignID)
	if err != nil {
		return nil, err
	}
	report.PendingApprovals = pending

	return report, nil
}

// Timeline returns the audit entries for a campaign, optionally narrowed to
// one creator relationship.
func (s *AnalyticsService) Timeline(campaignID, creatorID int) ([]*model.AuditEntry, error) {
	if creatorID > 0 {
		return s.Audit.ListByCampaignCreator(campaignID, creatorID)
	}
	return s.Audit.ListByCampaign(campaignID)
}
