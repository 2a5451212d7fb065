package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

// ApprovalFilter narrows pending-approval listings. Zero values mean no
// filtering on that field.
type ApprovalFilter struct {
	CampaignID int
	Priority   string
}

type ApprovalRepositoryInterface interface {
	Create(a *model.ApprovalRequest) error
	GetByID(id string) (*model.ApprovalRequest, error)
	ListPending(filter ApprovalFilter) ([]*model.ApprovalRequest, error)
	CountPending(campaignID int) (int, error)
	MarkResolved(a *model.ApprovalRequest) error
}

type ApprovalRepository struct {
	DB *sql.DB
}

const approvalColumns = `id, conversation_id, campaign_id, creator_id, reply_text, classification, suggested_reply, next_stage, priority, reason, status, resolved_by, notes, created_at, resolved_at`

func (r *ApprovalRepository) Create(a *model.ApprovalRequest) error {
	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = model.ApprovalPending
	}
	query := `
        INSERT INTO approval_requests
        (id, conversation_id, campaign_id, creator_id, reply_text, classification, suggested_reply, next_stage, priority, reason, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.DB.Exec(
		query,
		a.ID, a.ConversationID, a.CampaignID, a.CreatorID,
		a.ReplyText, a.Classification, a.SuggestedReply, a.NextStage,
		a.Priority, a.Reason, a.Status, a.CreatedAt,
	)
	return err
}

func (r *ApprovalRepository) GetByID(id string) (*model.ApprovalRequest, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id=$1`
	var a model.ApprovalRequest
	err := r.DB.QueryRow(query, id).Scan(
		&a.ID, &a.ConversationID, &a.CampaignID, &a.CreatorID,
		&a.ReplyText, &a.Classification, &a.SuggestedReply, &a.NextStage,
		&a.Priority, &a.Reason, &a.Status, &a.ResolvedBy, &a.Notes,
		&a.CreatedAt, &a.ResolvedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApprovalRepository) ListPending(filter ApprovalFilter) ([]*model.ApprovalRequest, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE status='pending'`
	args := []interface{}{}
	argPos := 1

	if filter.CampaignID > 0 {
		query += fmt.Sprintf(" AND campaign_id=$%d", argPos)
		args = append(args, filter.CampaignID)
		argPos++
	}
	if filter.Priority != "" {
		query += fmt.Sprintf(" AND priority=$%d", argPos)
		args = append(args, filter.Priority)
	}

	query += " ORDER BY created_at"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*model.ApprovalRequest{}
	for rows.Next() {
		var a model.ApprovalRequest
		if err := rows.Scan(
			&a.ID, &a.ConversationID, &a.CampaignID, &a.CreatorID,
			&a.ReplyText, &a.Classification, &a.SuggestedReply, &a.NextStage,
			&a.Priority, &a.Reason, &a.Status, &a.ResolvedBy, &a.Notes,
			&a.CreatedAt, &a.ResolvedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, &a)
	}
	return requests, nil
}

func (r *ApprovalRepository) CountPending(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM approval_requests WHERE status='pending' AND campaign_id=$1`,
		campaignID,
	).Scan(&count)
	return count, err
}

func (r *ApprovalRepository) MarkResolved(a *model.ApprovalRequest) error {
	query := `
        UPDATE approval_requests
        SET status=$1, resolved_by=$2, notes=$3, resolved_at=$4
        WHERE id=$5
    `
	_, err := r.DB.Exec(query, a.Status, a.ResolvedBy, a.Notes, a.ResolvedAt, a.ID)
	return err
}

var _ ApprovalRepositoryInterface = (*ApprovalRepository)(nil)
