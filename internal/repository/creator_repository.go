package repository

import (
	"database/sql"

	"github.com/crewpact/creatorreach-backend/internal/model"
)

// CreatorRepositoryInterface defines methods used by services
type CreatorRepositoryInterface interface {
	GetByID(id int) (*model.Creator, error)
	GetByEmail(email string) (*model.Creator, error)
	ListAll() ([]model.Creator, error)
}

// CreatorRepository is the concrete implementation
type CreatorRepository struct {
	DB *sql.DB
}

// GetByID fetches a creator by ID
func (r *CreatorRepository) GetByID(id int) (*model.Creator, error) {
	query := `
        SELECT id, name, email, platform, handle, followers, niche
        FROM creators
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var c model.Creator
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Platform, &c.Handle, &c.Followers, &c.Niche); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

// GetByEmail fetches a creator by email address
func (r *CreatorRepository) GetByEmail(email string) (*model.Creator, error) {
	query := `
        SELECT id, name, email, platform, handle, followers, niche
        FROM creators
        WHERE email = $1
    `
	row := r.DB.QueryRow(query, email)

	var c model.Creator
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Platform, &c.Handle, &c.Followers, &c.Niche); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListAll fetches all creators (used when sending outreach batches)
func (r *CreatorRepository) ListAll() ([]model.Creator, error) {
	query := `
        SELECT id, name, email, platform, handle, followers, niche
        FROM creators
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creators := []model.Creator{}
	for rows.Next() {
		var c model.Creator
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Platform, &c.Handle, &c.Followers, &c.Niche); err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}
	return creators, nil
}

var _ CreatorRepositoryInterface = (*CreatorRepository)(nil)
