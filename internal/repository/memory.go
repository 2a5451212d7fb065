// In-memory implementations of the repository interfaces. They back the unit
// tests and let the negotiation subsystem run without Postgres; all access is
// serialized with a mutex per store.
package repository

import (
	"sort"
	"sync"
	"time"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
)

// ---------------------- Outreach ----------------------

type MemoryOutreachRepository struct {
	mu      sync.Mutex
	nextID  int
	records map[int]*model.OutreachRecord
}

func NewMemoryOutreachRepository() *MemoryOutreachRepository {
	return &MemoryOutreachRepository{records: map[int]*model.OutreachRecord{}}
}

func (r *MemoryOutreachRepository) Create(o *model.OutreachRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = model.OutreachDraft
	}
	cp := *o
	r.records[o.ID] = &cp
	return nil
}

func (r *MemoryOutreachRepository) GetByID(id int) (*model.OutreachRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOutreachRepository) GetByToken(token string) (*model.OutreachRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.records {
		if o.CorrelationToken == token {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryOutreachRepository) FindByRecipientSince(recipient string, since time.Time) ([]*model.OutreachRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := []*model.OutreachRecord{}
	for _, o := range r.records {
		if o.Recipient != recipient || o.Status != model.OutreachSent || o.SentAt == nil {
			continue
		}
		if o.SentAt.Before(since) {
			continue
		}
		cp := *o
		matches = append(matches, &cp)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].SentAt.After(*matches[j].SentAt)
	})
	return matches, nil
}

func (r *MemoryOutreachRepository) UpdateStatus(id int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.records[id]; ok {
		o.Status = status
		o.UpdatedAt = time.Now()
	}
	return nil
}

var _ OutreachRepositoryInterface = (*MemoryOutreachRepository)(nil)

// ---------------------- Conversations ----------------------

type MemoryConversationRepository struct {
	mu         sync.Mutex
	nextConvID int
	nextMsgID  int
	convs      map[int]*model.Conversation
	messages   map[int][]*model.Message
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		convs:    map[int]*model.Conversation{},
		messages: map[int][]*model.Message{},
	}
}

func (r *MemoryConversationRepository) Create(c *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextConvID++
	c.ID = r.nextConvID
	now := time.Now()
	c.CreatedAt = now
	c.LastActivityAt = now
	if c.Stage == "" {
		c.Stage = model.StageInitialContact
	}
	cp := *c
	r.convs[c.ID] = &cp
	return nil
}

func (r *MemoryConversationRepository) GetByID(id int) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, appErrors.NewConversationNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryConversationRepository) GetByOutreachID(outreachID int) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.OutreachID == outreachID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryConversationRepository) ListByCampaign(campaignID int) ([]*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	convs := []*model.Conversation{}
	for _, c := range r.convs {
		if c.CampaignID == campaignID {
			cp := *c
			convs = append(convs, &cp)
		}
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].ID < convs[j].ID })
	return convs, nil
}

func (r *MemoryConversationRepository) UpdateStage(id int, stage model.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return appErrors.NewConversationNotFound(id)
	}
	c.Stage = stage
	c.LastActivityAt = time.Now()
	return nil
}

func (r *MemoryConversationRepository) AppendMessage(m *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[m.ConversationID]
	if !ok {
		return appErrors.NewConversationNotFound(m.ConversationID)
	}
	r.nextMsgID++
	m.ID = r.nextMsgID
	m.CreatedAt = time.Now()
	cp := *m
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &cp)
	c.LastActivityAt = m.CreatedAt
	return nil
}

func (r *MemoryConversationRepository) ListMessages(conversationID int) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := []*model.Message{}
	for _, m := range r.messages[conversationID] {
		cp := *m
		msgs = append(msgs, &cp)
	}
	return msgs, nil
}

var _ ConversationRepositoryInterface = (*MemoryConversationRepository)(nil)

// ---------------------- Negotiation states ----------------------

type relKey struct {
	campaignID int
	creatorID  int
}

type MemoryNegotiationRepository struct {
	mu     sync.Mutex
	nextID int
	states map[relKey]*model.NegotiationState
}

func NewMemoryNegotiationRepository() *MemoryNegotiationRepository {
	return &MemoryNegotiationRepository{states: map[relKey]*model.NegotiationState{}}
}

func (r *MemoryNegotiationRepository) Get(campaignID, creatorID int) (*model.NegotiationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[relKey{campaignID, creatorID}]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Flags = append([]string(nil), s.Flags...)
	return &cp, nil
}

func (r *MemoryNegotiationRepository) Save(s *model.NegotiationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := relKey{s.CampaignID, s.CreatorID}
	s.UpdatedAt = time.Now()
	if existing, ok := r.states[key]; ok {
		s.ID = existing.ID
	} else {
		r.nextID++
		s.ID = r.nextID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = s.UpdatedAt
		}
	}
	cp := *s
	cp.Flags = append([]string(nil), s.Flags...)
	r.states[key] = &cp
	return nil
}

func (r *MemoryNegotiationRepository) ListByCampaign(campaignID int) ([]*model.NegotiationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := []*model.NegotiationState{}
	for key, s := range r.states {
		if key.campaignID == campaignID {
			cp := *s
			cp.Flags = append([]string(nil), s.Flags...)
			states = append(states, &cp)
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states, nil
}

var _ NegotiationRepositoryInterface = (*MemoryNegotiationRepository)(nil)

// ---------------------- Approvals ----------------------

type MemoryApprovalRepository struct {
	mu       sync.Mutex
	requests map[string]*model.ApprovalRequest
	order    []string
}

func NewMemoryApprovalRepository() *MemoryApprovalRepository {
	return &MemoryApprovalRepository{requests: map[string]*model.ApprovalRequest{}}
}

func (r *MemoryApprovalRepository) Create(a *model.ApprovalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = model.ApprovalPending
	}
	cp := *a
	r.requests[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return nil
}

func (r *MemoryApprovalRepository) GetByID(id string) (*model.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryApprovalRepository) ListPending(filter ApprovalFilter) ([]*model.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requests := []*model.ApprovalRequest{}
	for _, id := range r.order {
		a := r.requests[id]
		if a.Status != model.ApprovalPending {
			continue
		}
		if filter.CampaignID > 0 && a.CampaignID != filter.CampaignID {
			continue
		}
		if filter.Priority != "" && a.Priority != filter.Priority {
			continue
		}
		cp := *a
		requests = append(requests, &cp)
	}
	return requests, nil
}

func (r *MemoryApprovalRepository) CountPending(campaignID int) (int, error) {
	pending, err := r.ListPending(ApprovalFilter{CampaignID: campaignID})
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (r *MemoryApprovalRepository) MarkResolved(a *model.ApprovalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.requests[a.ID]
	if !ok {
		return appErrors.NewApprovalNotFound(a.ID)
	}
	existing.Status = a.Status
	existing.ResolvedBy = a.ResolvedBy
	existing.Notes = a.Notes
	existing.ResolvedAt = a.ResolvedAt
	return nil
}

var _ ApprovalRepositoryInterface = (*MemoryApprovalRepository)(nil)

// ---------------------- Audit ----------------------

type MemoryAuditRepository struct {
	mu      sync.Mutex
	nextID  int
	entries []*model.AuditEntry
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Append(e *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	e.CreatedAt = time.Now()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MemoryAuditRepository) ListByCampaign(campaignID int) ([]*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []*model.AuditEntry{}
	for _, e := range r.entries {
		if e.CampaignID == campaignID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

func (r *MemoryAuditRepository) ListByCampaignCreator(campaignID, creatorID int) ([]*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := []*model.AuditEntry{}
	for _, e := range r.entries {
		if e.CampaignID == campaignID && e.CreatorID == creatorID {
			cp := *e
			entries = append(entries, &cp)
		}
	}
	return entries, nil
}

func (r *MemoryAuditRepository) CountByAction(campaignID int) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, e := range r.entries {
		if e.CampaignID == campaignID {
			counts[e.Action]++
		}
	}
	return counts, nil
}

var _ AuditRepositoryInterface = (*MemoryAuditRepository)(nil)

// ---------------------- Outbound messages ----------------------

type MemoryOutboundMessageRepository struct {
	mu     sync.Mutex
	nextID int
	msgs   map[int]*model.OutboundMessage
}

func NewMemoryOutboundMessageRepository() *MemoryOutboundMessageRepository {
	return &MemoryOutboundMessageRepository{msgs: map[int]*model.OutboundMessage{}}
}

func (r *MemoryOutboundMessageRepository) Create(msg *model.OutboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.Status == "" {
		msg.Status = "pending"
	}
	cp := *msg
	r.msgs[msg.ID] = &cp
	return nil
}

func (r *MemoryOutboundMessageRepository) GetByID(id int) (*model.OutboundMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.msgs[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	return &cp, nil
}

func (r *MemoryOutboundMessageRepository) Update(msg *model.OutboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.UpdatedAt = time.Now()
	cp := *msg
	r.msgs[msg.ID] = &cp
	return nil
}

func (r *MemoryOutboundMessageRepository) UpdateStatus(id int, status, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.msgs[id]; ok {
		msg.Status = status
		msg.LastError = lastError
		msg.RetryCount++
		msg.UpdatedAt = time.Now()
	}
	return nil
}

var _ OutboundMessageRepositoryInterface = (*MemoryOutboundMessageRepository)(nil)
