package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/wishsend/wishsend-backend/internal/errors"
	"github.com/wishsend/wishsend-backend/internal/model"
)

type FollowUpRepositoryInterface interface {
	Create(ctx context.Context, f *model.FollowUpCampaign) error
	GetByID(ctx context.Context, id string) (*model.FollowUpCampaign, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.FollowUpCampaign, error)
	UpdateStatus(ctx context.Context, id, status string) error
	FinalizeRun(ctx context.Context, id, status string, sentCount, failedCount int) error
	DueScheduled(ctx context.Context, now time.Time) ([]*model.FollowUpCampaign, error)
}

type FollowUpRepository struct {
	DB *sql.DB
}

const followUpColumns = `id, campaign_id, user_id, name, subject, body, status, engagement_threshold,
	total_selected, total_excluded, sent_count, failed_count, include_signature, include_logo,
	is_scheduled, scheduled_send_date, created_at, updated_at`

func (r *FollowUpRepository) Create(ctx context.Context, f *model.FollowUpCampaign) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.StatusDraft
	}
	f.CreatedAt = time.Now()

	query := `
        INSERT INTO follow_up_campaigns (id, campaign_id, user_id, name, subject, body, status,
            engagement_threshold, total_selected, total_excluded, include_signature, include_logo,
            is_scheduled, scheduled_send_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.DB.ExecContext(ctx, query,
		f.ID, f.CampaignID, f.UserID, f.Name, f.Subject, f.Body, f.Status,
		f.EngagementThreshold, f.TotalSelected, f.TotalExcluded, f.IncludeSignature, f.IncludeLogo,
		f.IsScheduled, f.ScheduledSendDate, f.CreatedAt,
	)
	return err
}

func (r *FollowUpRepository) GetByID(ctx context.Context, id string) (*model.FollowUpCampaign, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_up_campaigns WHERE id=$1`
	f, err := scanFollowUp(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewFollowUpNotFound(id)
		}
		return nil, err
	}
	return f, nil
}

func (r *FollowUpRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.FollowUpCampaign, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_up_campaigns WHERE campaign_id=$1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followUps := []*model.FollowUpCampaign{}
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

func (r *FollowUpRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE follow_up_campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

func (r *FollowUpRepository) FinalizeRun(ctx context.Context, id, status string, sentCount, failedCount int) error {
	query := `UPDATE follow_up_campaigns SET status=$1, sent_count=$2, failed_count=$3, updated_at=NOW() WHERE id=$4`
	_, err := r.DB.ExecContext(ctx, query, status, sentCount, failedCount, id)
	return err
}

func (r *FollowUpRepository) DueScheduled(ctx context.Context, now time.Time) ([]*model.FollowUpCampaign, error) {
	query := `SELECT ` + followUpColumns + `
        FROM follow_up_campaigns
        WHERE status=$1 AND is_scheduled=TRUE AND scheduled_send_date <= $2`
	rows, err := r.DB.QueryContext(ctx, query, model.StatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	followUps := []*model.FollowUpCampaign{}
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		followUps = append(followUps, f)
	}
	return followUps, rows.Err()
}

func scanFollowUp(row rowScanner) (*model.FollowUpCampaign, error) {
	var f model.FollowUpCampaign
	err := row.Scan(
		&f.ID, &f.CampaignID, &f.UserID, &f.Name, &f.Subject, &f.Body, &f.Status,
		&f.EngagementThreshold, &f.TotalSelected, &f.TotalExcluded,
		&f.SentCount, &f.FailedCount, &f.IncludeSignature, &f.IncludeLogo,
		&f.IsScheduled, &f.ScheduledSendDate, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FollowUpRepositoryInterface = (*FollowUpRepository)(nil)
