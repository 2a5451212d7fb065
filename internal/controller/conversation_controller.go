// internal/controller/conversation_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/service"
)

type ConversationController struct {
	ConversationService *service.ConversationService
}

// HandleInbound is the webhook the mailbox poller posts replies to.
func (c *ConversationController) HandleInbound(w http.ResponseWriter, r *http.Request) {
	var msg service.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	result, err := c.ConversationService.HandleInboundReply(r.Context(), msg)
	if err != nil {
		var invalid *appErrors.ErrInvalidInbound
		if errors.As(err, &invalid) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// MarkContractSent lets the contract subsystem report dispatch of the
// agreement.
func (c *ConversationController) MarkContractSent(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "invalid conversation id", http.StatusBadRequest)
		return
	}

	conv, err := c.ConversationService.MarkContractSent(id)
	if err != nil {
		var notFound *appErrors.ErrConversationNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		var invalid *appErrors.ErrInvalidInbound
		if errors.As(err, &invalid) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(conv)
}
