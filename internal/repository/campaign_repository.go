package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	UpdateStatus(ctx context.Context, id, status string) error
	FinalizeRun(ctx context.Context, id, status string, sentCount, failedCount int) error
	DueScheduled(ctx context.Context, now time.Time) ([]*model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, name, subject, body, status, total_contacts, sent_count, failed_count,
	include_signature, include_logo, is_scheduled, scheduled_send_date, created_at, updated_at`

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	c.CreatedAt = time.Now()

	query := `
        INSERT INTO campaigns (id, user_id, name, subject, body, status, total_contacts,
            include_signature, include_logo, is_scheduled, scheduled_send_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.Subject, c.Body, c.Status, c.TotalContacts,
		c.IncludeSignature, c.IncludeLogo, c.IsScheduled, c.ScheduledSendDate, c.CreatedAt,
	)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListByUser(ctx context.Context, userID string) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Update rewrites draft fields. Callable only before a send begins; once the
// campaign is sending the dispatcher owns the row.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET name=$1, subject=$2, body=$3, include_signature=$4, include_logo=$5,
            is_scheduled=$6, scheduled_send_date=$7, status=$8, total_contacts=$9, updated_at=NOW()
        WHERE id=$10
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.Name, c.Subject, c.Body, c.IncludeSignature, c.IncludeLogo,
		c.IsScheduled, c.ScheduledSendDate, c.Status, c.TotalContacts, c.ID,
	)
	return err
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

// FinalizeRun records the terminal outcome of a send run.
func (r *CampaignRepository) FinalizeRun(ctx context.Context, id, status string, sentCount, failedCount int) error {
	query := `UPDATE campaigns SET status=$1, sent_count=$2, failed_count=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.DB.ExecContext(ctx, query, status, sentCount, failedCount, id)
	return err
}

// DueScheduled returns scheduled campaigns whose send date has passed.
func (r *CampaignRepository) DueScheduled(ctx context.Context, now time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
        FROM campaigns
        WHERE status=$1 AND is_scheduled=TRUE AND scheduled_send_date <= $2`
	rows, err := r.DB.QueryContext(ctx, query, model.StatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Subject, &c.Body, &c.Status,
		&c.TotalContacts, &c.SentCount, &c.FailedCount,
		&c.IncludeSignature, &c.IncludeLogo, &c.IsScheduled,
		&c.ScheduledSendDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
