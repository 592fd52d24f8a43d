package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wishsend/wishsend-backend/internal/model"
)

type ContactRepositoryInterface interface {
	BulkCreate(ctx context.Context, contacts []*model.Contact) error
	GetByID(ctx context.Context, id string) (*model.Contact, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.Contact, error)
}

type ContactRepository struct {
	DB *sql.DB
}

// BulkCreate inserts the uploaded contact rows in one transaction. The rows
// arrive already validated (non-empty name and email); duplicates per
// campaign are permitted.
func (r *ContactRepository) BulkCreate(ctx context.Context, contacts []*model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO contacts (id, campaign_id, first_name, last_name, email, company, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range contacts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, c.ID, c.CampaignID, c.FirstName, c.LastName, c.Email, c.Company, c.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	query := `
        SELECT id, campaign_id, first_name, last_name, email, company, created_at
        FROM contacts WHERE id=$1
    `
	var c model.Contact
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.CampaignID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListByCampaign returns the campaign's contacts in upload order; the
// dispatcher processes them in exactly this order.
func (r *ContactRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Contact, error) {
	query := `
        SELECT id, campaign_id, first_name, last_name, email, company, created_at
        FROM contacts WHERE campaign_id=$1 ORDER BY created_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.CampaignID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
