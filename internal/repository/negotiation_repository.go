package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

type NegotiationRepositoryInterface interface {
	Get(campaignID, creatorID int) (*model.NegotiationState, error)
	Save(s *model.NegotiationState) error
	ListByCampaign(campaignID int) ([]*model.NegotiationState, error)
}

type NegotiationRepository struct {
	DB *sql.DB
}

const negotiationColumns = `id, campaign_id, creator_id, status, highest_rate, lowest_rate, max_budget, target_rate, round, requires_human_approval, flags, created_at, updated_at`

// Get returns the state for a relationship, or nil when none exists.
// Reading never mutates state.
func (r *NegotiationRepository) Get(campaignID, creatorID int) (*model.NegotiationState, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiation_states WHERE campaign_id=$1 AND creator_id=$2`
	var s model.NegotiationState
	err := r.DB.QueryRow(query, campaignID, creatorID).Scan(
		&s.ID, &s.CampaignID, &s.CreatorID, &s.Status,
		&s.HighestRate, &s.LowestRate, &s.MaxBudget, &s.TargetRate,
		&s.Round, &s.RequiresHumanApproval, pq.Array(&s.Flags),
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Save upserts the state keyed by (campaign_id, creator_id).
func (r *NegotiationRepository) Save(s *model.NegotiationState) error {
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	query := `
        INSERT INTO negotiation_states
        (campaign_id, creator_id, status, highest_rate, lowest_rate, max_budget, target_rate, round, requires_human_approval, flags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (campaign_id, creator_id) DO UPDATE SET
            status=EXCLUDED.status,
            highest_rate=EXCLUDED.highest_rate,
            lowest_rate=EXCLUDED.lowest_rate,
            max_budget=EXCLUDED.max_budget,
            target_rate=EXCLUDED.target_rate,
            round=EXCLUDED.round,
            requires_human_approval=EXCLUDED.requires_human_approval,
            flags=EXCLUDED.flags,
            updated_at=EXCLUDED.updated_at
        RETURNING id
    `
	return r.DB.QueryRow(
		query,
		s.CampaignID, s.CreatorID, s.Status,
		s.HighestRate, s.LowestRate, s.MaxBudget, s.TargetRate,
		s.Round, s.RequiresHumanApproval, pq.Array(s.Flags),
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *NegotiationRepository) ListByCampaign(campaignID int) ([]*model.NegotiationState, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiation_states WHERE campaign_id=$1 ORDER BY id`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := []*model.NegotiationState{}
	for rows.Next() {
		var s model.NegotiationState
		if err := rows.Scan(
			&s.ID, &s.CampaignID, &s.CreatorID, &s.Status,
			&s.HighestRate, &s.LowestRate, &s.MaxBudget, &s.TargetRate,
			&s.Round, &s.RequiresHumanApproval, pq.Array(&s.Flags),
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		states = append(states, &s)
	}
	return states, nil
}

var _ NegotiationRepositoryInterface = (*NegotiationRepository)(nil)
