package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wishsend/wishsend-backend/internal/model"
)

type ExclusionRepositoryInterface interface {
	CreateMany(ctx context.Context, exclusions []*model.ContactExclusion) error
	ListContactIDs(ctx context.Context, followUpCampaignID string) (map[string]bool, error)
	ListByFollowUp(ctx context.Context, followUpCampaignID string) ([]*model.ContactExclusion, error)
}

type ExclusionRepository struct {
	DB *sql.DB
}

// CreateMany persists the exclusion snapshot taken when a follow-up is sent.
// Exclusions are audit rows; they are written once per follow-up, not on
// every toggle in the selection UI.
func (r *ExclusionRepository) CreateMany(ctx context.Context, exclusions []*model.ContactExclusion) error {
	if len(exclusions) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO contact_exclusions (id, follow_up_campaign_id, contact_id, reason, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range exclusions {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, e.ID, e.FollowUpCampaignID, e.ContactID, e.Reason, e.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListContactIDs returns the excluded contact ids as a set. The scheduled
// runner recomputes the follow-up audience from these persisted rows, never
// from an ephemeral selection.
func (r *ExclusionRepository) ListContactIDs(ctx context.Context, followUpCampaignID string) (map[string]bool, error) {
	query := `SELECT contact_id FROM contact_exclusions WHERE follow_up_campaign_id=$1`
	rows, err := r.DB.QueryContext(ctx, query, followUpCampaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	excluded := map[string]bool{}
	for rows.Next() {
		var contactID string
		if err := rows.Scan(&contactID); err != nil {
			return nil, err
		}
		excluded[contactID] = true
	}
	return excluded, rows.Err()
}

func (r *ExclusionRepository) ListByFollowUp(ctx context.Context, followUpCampaignID string) ([]*model.ContactExclusion, error) {
	query := `
        SELECT id, follow_up_campaign_id, contact_id, reason, created_at
        FROM contact_exclusions WHERE follow_up_campaign_id=$1 ORDER BY created_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, followUpCampaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exclusions := []*model.ContactExclusion{}
	for rows.Next() {
		var e model.ContactExclusion
		if err := rows.Scan(&e.ID, &e.FollowUpCampaignID, &e.ContactID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		exclusions = append(exclusions, &e)
	}
	return exclusions, rows.Err()
}

var _ ExclusionRepositoryInterface = (*ExclusionRepository)(nil)
