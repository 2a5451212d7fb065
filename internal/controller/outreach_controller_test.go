package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/crewpact/creatorreach-backend/internal/controller"
	"github.com/crewpact/creatorreach-backend/internal/model"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

// --- Mock Repositories ---

type MockCreatorRepo struct{}

func (m *MockCreatorRepo) GetByID(id int) (*model.Creator, error) {
	return &model.Creator{
		ID:       id,
		Name:     "Amara Diallo",
		Email:    "amara@example.com",
		Platform: "youtube",
		Handle:   "@amaracooks",
		Niche:    "cooking",
	}, nil
}

func (m *MockCreatorRepo) GetByEmail(email string) (*model.Creator, error) { return nil, nil }

func (m *MockCreatorRepo) ListAll() ([]model.Creator, error) {
	return []model.Creator{}, nil
}

type MockCampaignRepo struct{}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	return &model.Campaign{
		ID:           id,
		Name:         "Spring Launch",
		BaseTemplate: "Hi {name}, we love your {niche} content on {platform} and would like to partner for {campaign_name}!",
	}, nil
}

func (m *MockCampaignRepo) Create(c *model.Campaign) error { return nil }
func (m *MockCampaignRepo) Update(c *model.Campaign) error { return nil }
func (m *MockCampaignRepo) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	return []*model.Campaign{}, 0, nil
}
func (m *MockCampaignRepo) UpdateStatus(id int, status string) error { return nil }

// --- Test Function ---

func TestPersonalizedPreviewHandler(t *testing.T) {
	// Initialize service with mocks
	svc := &service.OutreachService{
		CampaignRepo: &MockCampaignRepo{},
		CreatorRepo:  &MockCreatorRepo{},
		Logger:       zap.NewNop(),
	}

	ctrl := &controller.OutreachController{
		OutreachService: svc,
	}

	// Create request body
	body := map[string]interface{}{"creator_id": 1}
	b, _ := json.Marshal(body)

	// Create HTTP request
	req := httptest.NewRequest("POST", "/campaigns/1/personalized-preview", bytes.NewReader(b))
	w := httptest.NewRecorder()

	// Call the controller handler
	ctrl.PersonalizedPreview(w, req)

	// Check response
	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var res map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	msg, ok := res["rendered_message"].(string)
	if !ok {
		t.Fatalf("rendered_message not found or not a string")
	}

	if !strings.Contains(msg, "Amara Diallo") {
		t.Errorf("expected 'Amara Diallo' in message, got %q", msg)
	}
	if !strings.Contains(msg, "youtube") {
		t.Errorf("expected 'youtube' in message, got %q", msg)
	}
}

type MockCampaignRepoForPagination struct {
	campaigns []*model.Campaign
}

func (m *MockCampaignRepoForPagination) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	var filtered []*model.Campaign
	for _, c := range m.campaigns {
		if channel != "" && c.Channel != channel {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		filtered = append(filtered, c)
	}
	total := len(filtered)

	// Simulate pagination
	start := offset
	end := offset + limit
	if start > total {
		return []*model.Campaign{}, total, nil
	}
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *MockCampaignRepoForPagination) GetByID(id int) (*model.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCampaignRepoForPagination) Create(c *model.Campaign) error           { return nil }
func (m *MockCampaignRepoForPagination) Update(c *model.Campaign) error           { return nil }
func (m *MockCampaignRepoForPagination) UpdateStatus(id int, status string) error { return nil }

func TestListCampaignsPagination(t *testing.T) {
	// --- Seed only campaigns that match the filter ---
	totalCampaigns := 25 // total email & draft campaigns
	campaigns := []*model.Campaign{}
	for i := 1; i <= totalCampaigns; i++ {
		campaigns = append(campaigns, &model.Campaign{
			ID:      i,
			Name:    "Campaign " + strconv.Itoa(i),
			Channel: "email",
			Status:  "draft",
		})
	}

	// Initialize repo, service, controller
	repo := &MockCampaignRepoForPagination{campaigns: campaigns}
	svc := &service.OutreachService{CampaignRepo: repo, Logger: zap.NewNop()}
	ctrl := &controller.OutreachController{OutreachService: svc}

	pageSize := 10
	seen := map[int]bool{}

	totalPages := (totalCampaigns + pageSize - 1) / pageSize

	for page := 1; page <= totalPages; page++ {
		req := httptest.NewRequest(
			"GET",
			"/campaigns?page="+strconv.Itoa(page)+
				"&page_size="+strconv.Itoa(pageSize)+
				"&channel=email&status=draft",
			nil,
		)
		w := httptest.NewRecorder()

		ctrl.ListCampaigns(w, req)
		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var res struct {
			Data       []model.Campaign `json:"data"`
			Pagination struct {
				Page       int `json:"page"`
				PageSize   int `json:"page_size"`
				TotalCount int `json:"total_count"`
			} `json:"pagination"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		// --- Check pagination info ---
		if res.Pagination.Page != page {
			t.Errorf("expected page %d, got %d", page, res.Pagination.Page)
		}
		if res.Pagination.PageSize != pageSize {
			t.Errorf("expected page size %d, got %d", pageSize, res.Pagination.PageSize)
		}
		if res.Pagination.TotalCount != totalCampaigns {
			t.Errorf("expected total count %d, got %d", totalCampaigns, res.Pagination.TotalCount)
		}

		// --- Check data ---
		for _, c := range res.Data {
			// No duplicates
			if seen[c.ID] {
				t.Errorf("duplicate campaign ID %d across pages", c.ID)
			}
			seen[c.ID] = true

			// Filters
			if c.Channel != "email" {
				t.Errorf("expected channel email, got %s", c.Channel)
			}
			if c.Status != "draft" {
				t.Errorf("expected status draft, got %s", c.Status)
			}
		}
	}

	// --- Ensure all campaigns are returned ---
	if len(seen) != totalCampaigns {
		t.Errorf("expected %d unique campaigns, got %d", totalCampaigns, len(seen))
	}
}
