package repository

import (
	"database/sql"
	"time"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

type OutreachRepositoryInterface interface {
	Create(o *model.OutreachRecord) error
	GetByID(id int) (*model.OutreachRecord, error)
	GetByToken(token string) (*model.OutreachRecord, error)
	FindByRecipientSince(recipient string, since time.Time) ([]*model.OutreachRecord, error)
	UpdateStatus(id int, status string) error
}

type OutreachRepository struct {
	DB *sql.DB
}

const outreachColumns = `id, campaign_id, creator_id, recipient, subject, correlation_token, status, notes, sent_at, created_at, updated_at`

func (r *OutreachRepository) Create(o *model.OutreachRecord) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = model.OutreachDraft
	}
	query := `
        INSERT INTO outreach_records
        (campaign_id, creator_id, recipient, subject, correlation_token, status, notes, sent_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `
	return r.DB.QueryRow(
		query,
		o.CampaignID, o.CreatorID, o.Recipient, o.Subject,
		o.CorrelationToken, o.Status, o.Notes, o.SentAt,
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
}

func (r *OutreachRepository) GetByID(id int) (*model.OutreachRecord, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreach_records WHERE id=$1`
	return r.scanOne(r.DB.QueryRow(query, id))
}

func (r *OutreachRepository) GetByToken(token string) (*model.OutreachRecord, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreach_records WHERE correlation_token=$1`
	return r.scanOne(r.DB.QueryRow(query, token))
}

// FindByRecipientSince returns sent records addressed to recipient created
// after since, most recently sent first.
func (r *OutreachRepository) FindByRecipientSince(recipient string, since time.Time) ([]*model.OutreachRecord, error) {
	query := `
        SELECT ` + outreachColumns + `
        FROM outreach_records
        WHERE recipient=$1 AND status=$2 AND sent_at >= $3
        ORDER BY sent_at DESC
    `
	rows, err := r.DB.Query(query, recipient, model.OutreachSent, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*model.OutreachRecord{}
	for rows.Next() {
		var o model.OutreachRecord
		if err := rows.Scan(
			&o.ID, &o.CampaignID, &o.CreatorID, &o.Recipient, &o.Subject,
			&o.CorrelationToken, &o.Status, &o.Notes, &o.SentAt,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &o)
	}
	return records, nil
}

func (r *OutreachRepository) UpdateStatus(id int, status string) error {
	query := `UPDATE outreach_records SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, id)
	return err
}

func (r *OutreachRepository) scanOne(row *sql.Row) (*model.OutreachRecord, error) {
	var o model.OutreachRecord
	err := row.Scan(
		&o.ID, &o.CampaignID, &o.CreatorID, &o.Recipient, &o.Subject,
		&o.CorrelationToken, &o.Status, &o.Notes, &o.SentAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

var _ OutreachRepositoryInterface = (*OutreachRepository)(nil)
