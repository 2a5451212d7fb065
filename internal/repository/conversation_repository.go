package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/crewpact/creatorreach-backend/internal/errors"
	"github.com/crewpact/creatorreach-backend/internal/model"
)

type ConversationRepositoryInterface interface {
	Create(c *model.Conversation) error
	GetByID(id int) (*model.Conversation, error)
	GetByOutreachID(outreachID int) (*model.Conversation, error)
	ListByCampaign(campaignID int) ([]*model.Conversation, error)
	UpdateStage(id int, stage model.Stage) error
	AppendMessage(m *model.Message) error
	ListMessages(conversationID int) ([]*model.Message, error)
}

type ConversationRepository struct {
	DB *sql.DB
}

func (r *ConversationRepository) Create(c *model.Conversation) error {
	now := time.Now()
	c.CreatedAt = now
	c.LastActivityAt = now
	if c.Stage == "" {
		c.Stage = model.StageInitialContact
	}
	query := `
        INSERT INTO conversations (outreach_id, campaign_id, creator_id, stage, last_activity_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.OutreachID, c.CampaignID, c.CreatorID, c.Stage, c.LastActivityAt, c.CreatedAt).Scan(&c.ID)
}

func (r *ConversationRepository) GetByID(id int) (*model.Conversation, error) {
	query := `
        SELECT id, outreach_id, campaign_id, creator_id, stage, last_activity_at, created_at
        FROM conversations WHERE id=$1
    `
	var c model.Conversation
	err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.OutreachID, &c.CampaignID, &c.CreatorID, &c.Stage, &c.LastActivityAt, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewConversationNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// GetByOutreachID returns the single conversation rooted at an outreach
// record, or nil when none exists yet.
func (r *ConversationRepository) GetByOutreachID(outreachID int) (*model.Conversation, error) {
	query := `
        SELECT id, outreach_id, campaign_id, creator_id, stage, last_activity_at, created_at
        FROM conversations WHERE outreach_id=$1
    `
	var c model.Conversation
	err := r.DB.QueryRow(query, outreachID).Scan(&c.ID, &c.OutreachID, &c.CampaignID, &c.CreatorID, &c.Stage, &c.LastActivityAt, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) ListByCampaign(campaignID int) ([]*model.Conversation, error) {
	query := `
        SELECT id, outreach_id, campaign_id, creator_id, stage, last_activity_at, created_at
        FROM conversations WHERE campaign_id=$1 ORDER BY id
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := []*model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.OutreachID, &c.CampaignID, &c.CreatorID, &c.Stage, &c.LastActivityAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, &c)
	}
	return convs, nil
}

func (r *ConversationRepository) UpdateStage(id int, stage model.Stage) error {
	query := `UPDATE conversations SET stage=$1, last_activity_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, stage, id)
	return err
}

func (r *ConversationRepository) AppendMessage(m *model.Message) error {
	m.CreatedAt = time.Now()
	query := `
        INSERT INTO messages (conversation_id, origin, body, classification, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	if err := r.DB.QueryRow(query, m.ConversationID, m.Origin, m.Body, m.Classification, m.CreatedAt).Scan(&m.ID); err != nil {
		return err
	}
	_, err := r.DB.Exec(`UPDATE conversations SET last_activity_at=NOW() WHERE id=$1`, m.ConversationID)
	return err
}

func (r *ConversationRepository) ListMessages(conversationID int) ([]*model.Message, error) {
	query := `
        SELECT id, conversation_id, origin, body, classification, created_at
        FROM messages WHERE conversation_id=$1 ORDER BY id
    `
	rows, err := r.DB.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []*model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Origin, &m.Body, &m.Classification, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

var _ ConversationRepositoryInterface = (*ConversationRepository)(nil)
