// internal/handler/approval_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/repository"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

// ApprovalHandler holds the dependencies for approval-queue HTTP handlers
type ApprovalHandler struct {
	Approvals *service.ApprovalService
	Analytics *service.AnalyticsService
}

// ListPendingHandler returns pending approval requests, optionally filtered
// by campaign and priority.
func (h *ApprovalHandler) ListPendingHandler(w http.ResponseWriter, r *http.Request) {
	filter := repository.ApprovalFilter{
		Priority: r.URL.Query().Get("priority"),
	}
	if campaignIDStr := r.URL.Query().Get("campaign_id"); campaignIDStr != "" {
		id, err := strconv.Atoi(campaignIDStr)
		if err != nil {
			http.Error(w, "invalid campaign_id", http.StatusBadRequest)
			return
		}
		filter.CampaignID = id
	}

	requests, err := h.Approvals.ListPending(filter)
	if err != nil {
		http.Error(w, "failed to fetch approvals: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  requests,
		"count": len(requests),
	})
}

// ResolveHandler applies a human verdict to a pending approval request.
func (h *ApprovalHandler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	var payload struct {
		Verdict      string `json:"verdict"`
		ResponseText string `json:"response_text"`
		Notes        string `json:"notes"`
		ResolvedBy   string `json:"resolved_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	conv, err := h.Approvals.Resolve(requestID, payload.Verdict, payload.ResponseText, payload.Notes, payload.ResolvedBy)
	if err != nil {
		var notFound *appErrors.ErrApprovalNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var notPending *appErrors.ErrApprovalNotPending
		if errors.As(err, &notPending) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "failed to resolve approval: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conv)
}

// AnalyticsHandler returns the derived analytics report for a campaign.
func (h *ApprovalHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	report, err := h.Analytics.Report(id)
	if err != nil {
		http.Error(w, "failed to build analytics: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// TimelineHandler returns the audit timeline for a campaign, optionally
// narrowed to one creator.
func (h *ApprovalHandler) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}

	creatorID := 0
	if creatorStr := r.URL.Query().Get("creator_id"); creatorStr != "" {
		creatorID, err = strconv.Atoi(creatorStr)
		if err != nil {
			http.Error(w, "invalid creator_id", http.StatusBadRequest)
			return
		}
	}

	entries, err := h.Analytics.Timeline(id, creatorID)
	if err != nil {
		http.Error(w, "failed to fetch timeline: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  entries,
		"count": len(entries),
	})
}
