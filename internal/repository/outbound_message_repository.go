package repository

import (
	"database/sql"
	"time"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

type OutboundMessageRepositoryInterface interface {
	Create(msg *model.OutboundMessage) error
	GetByID(id int) (*model.OutboundMessage, error)
	Update(msg *model.OutboundMessage) error
	UpdateStatus(id int, status, lastError string) error
}

type OutboundMessageRepository struct {
	DB *sql.DB
}

// Create inserts a new outbound message and returns the created ID
func (r *OutboundMessageRepository) Create(msg *model.OutboundMessage) error {
	now := time.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.Status == "" {
		msg.Status = "pending"
	}
	query := `
        INSERT INTO outbound_messages
        (outreach_id, conversation_id, recipient, subject, body, status, last_error, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	return r.DB.QueryRow(
		query,
		msg.OutreachID,
		msg.ConversationID,
		msg.Recipient,
		msg.Subject,
		msg.Body,
		msg.Status,
		msg.LastError,
		msg.RetryCount,
		msg.CreatedAt,
		msg.UpdatedAt,
	).Scan(&msg.ID)
}

// Update updates an existing outbound message (e.g., status, last_error, retry_count)
func (r *OutboundMessageRepository) Update(msg *model.OutboundMessage) error {
	msg.UpdatedAt = time.Now()
	query := `
        UPDATE outbound_messages
        SET status=$1, last_error=$2, retry_count=$3, updated_at=$4
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, msg.Status, msg.LastError, msg.RetryCount, msg.UpdatedAt, msg.ID)
	return err
}

func (r *OutboundMessageRepository) UpdateStatus(id int, status, lastError string) error {
	query := `UPDATE outbound_messages SET status=$1, last_error=$2, retry_count=retry_count+1, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, status, lastError, id)
	return err
}

// GetByID fetches an outbound message by its ID
func (r *OutboundMessageRepository) GetByID(id int) (*model.OutboundMessage, error) {
	query := `
        SELECT id, outreach_id, conversation_id, recipient, subject, body, status, last_error, retry_count, created_at, updated_at
        FROM outbound_messages
        WHERE id=$1
    `
	var msg model.OutboundMessage
	err := r.DB.QueryRow(query, id).Scan(
		&msg.ID,
		&msg.OutreachID,
		&msg.ConversationID,
		&msg.Recipient,
		&msg.Subject,
		&msg.Body,
		&msg.Status,
		&msg.LastError,
		&msg.RetryCount,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

var _ OutboundMessageRepositoryInterface = (*OutboundMessageRepository)(nil)
