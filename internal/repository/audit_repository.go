package repository

import (
	"database/sql"
	"time"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

// AuditRepositoryInterface is append-only: entries are written once and read
// back for timelines and analytics, never updated or deleted.
type AuditRepositoryInterface interface {
	Append(e *model.AuditEntry) error
	ListByCampaign(campaignID int) ([]*model.AuditEntry, error)
	ListByCampaignCreator(campaignID, creatorID int) ([]*model.AuditEntry, error)
	CountByAction(campaignID int) (map[string]int, error)
}

type AuditRepository struct {
	DB *sql.DB
}

func (r *AuditRepository) Append(e *model.AuditEntry) error {
	e.CreatedAt = time.Now()
	query := `
        INSERT INTO audit_entries (campaign_id, creator_id, actor, action, payload, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, e.CampaignID, e.CreatorID, e.Actor, e.Action, e.Payload, e.CreatedAt).Scan(&e.ID)
}

func (r *AuditRepository) ListByCampaign(campaignID int) ([]*model.AuditEntry, error) {
	query := `
        SELECT id, campaign_id, creator_id, actor, action, payload, created_at
        FROM audit_entries WHERE campaign_id=$1 ORDER BY id
    `
	return r.list(query, campaignID)
}

func (r *AuditRepository) ListByCampaignCreator(campaignID, creatorID int) ([]*model.AuditEntry, error) {
	query := `
        SELECT id, campaign_id, creator_id, actor, action, payload, created_at
        FROM audit_entries WHERE campaign_id=$1 AND creator_id=$2 ORDER BY id
    `
	return r.list(query, campaignID, creatorID)
}

func (r *AuditRepository) CountByAction(campaignID int) (map[string]int, error) {
	query := `SELECT action, COUNT(*) FROM audit_entries WHERE campaign_id=$1 GROUP BY action`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, nil
}

func (r *AuditRepository) list(query string, args ...interface{}) ([]*model.AuditEntry, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.CreatorID, &e.Actor, &e.Action, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

var _ AuditRepositoryInterface = (*AuditRepository)(nil)
