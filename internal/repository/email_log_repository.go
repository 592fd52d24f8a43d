package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/wishsend/wishsend-backend/internal/model"
)

type EmailLogRepositoryInterface interface {
	CreatePending(ctx context.Context, log *model.EmailLog) error
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	GetByTrackingPixelID(ctx context.Context, trackingID string) (*model.EmailLog, error)
	RecordOpen(ctx context.Context, open *model.EmailOpen) error
	TerminalOutcomes(ctx context.Context, sendCtx model.SendContext) (map[string]string, error)
	OpenCountsByCampaign(ctx context.Context, campaignID string) (map[string]int, error)
	ListByContext(ctx context.Context, sendCtx model.SendContext) ([]*model.EmailLog, error)
	ListOpensByLog(ctx context.Context, emailLogID string) ([]*model.EmailOpen, error)
	StatusCounts(ctx context.Context, sendCtx model.SendContext) (map[string]int, error)
}

type EmailLogRepository struct {
	DB *sql.DB
}

const emailLogColumns = `id, campaign_id, follow_up_campaign_id, contact_id, user_id, recipient_email,
	subject, body, status, error_message, sent_at, tracking_pixel_id, opened_count,
	first_opened_at, last_opened_at, created_at`

// CreatePending inserts the log row before the transport is invoked, so the
// tracking pixel id is durable before any client could possibly fetch it.
func (r *EmailLogRepository) CreatePending(ctx context.Context, log *model.EmailLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.Status = model.StatusPending
	log.CreatedAt = time.Now()

	query := `
        INSERT INTO email_logs (id, campaign_id, follow_up_campaign_id, contact_id, user_id,
            recipient_email, subject, body, status, tracking_pixel_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.DB.ExecContext(ctx, query,
		log.ID, log.CampaignID, log.FollowUpCampaignID, log.ContactID, log.UserID,
		log.RecipientEmail, log.Subject, log.Body, log.Status, log.TrackingPixelID, log.CreatedAt,
	)
	return err
}

func (r *EmailLogRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE email_logs SET status=$1, sent_at=$2, error_message='' WHERE id=$3`
	_, err := r.DB.ExecContext(ctx, query, model.StatusSent, sentAt, id)
	return err
}

func (r *EmailLogRepository) MarkFailed(ctx context.Context, id, errorMessage string) error {
	query := `UPDATE email_logs SET status=$1, error_message=$2 WHERE id=$3`
	_, err := r.DB.ExecContext(ctx, query, model.StatusFailed, errorMessage, id)
	return err
}

func (r *EmailLogRepository) GetByTrackingPixelID(ctx context.Context, trackingID string) (*model.EmailLog, error) {
	query := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE tracking_pixel_id=$1`
	var l model.EmailLog
	err := r.DB.QueryRowContext(ctx, query, trackingID).Scan(
		&l.ID, &l.CampaignID, &l.FollowUpCampaignID, &l.ContactID, &l.UserID, &l.RecipientEmail,
		&l.Subject, &l.Body, &l.Status, &l.ErrorMessage, &l.SentAt, &l.TrackingPixelID,
		&l.OpenedCount, &l.FirstOpenedAt, &l.LastOpenedAt, &l.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// RecordOpen appends the open event and bumps the log aggregates in one
// transaction. The counter update is an in-database increment, not a
// read-modify-write, so concurrent pixel fetches for the same log never lose
// an open.
func (r *EmailLogRepository) RecordOpen(ctx context.Context, open *model.EmailOpen) error {
	if open.ID == "" {
		open.ID = uuid.NewString()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO email_opens (id, email_log_id, campaign_id, follow_up_campaign_id, contact_id, user_id, opened_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, open.ID, open.EmailLogID, open.CampaignID, open.FollowUpCampaignID, open.ContactID, open.UserID, open.OpenedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE email_logs
        SET opened_count = opened_count + 1,
            first_opened_at = COALESCE(first_opened_at, $1),
            last_opened_at = $1
        WHERE id = $2
    `, open.OpenedAt, open.EmailLogID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// TerminalOutcomes maps contact id to its terminal status within one send
// context. Contacts still pending (or never attempted) are absent. The
// dispatcher uses this to resume an interrupted run without re-sending.
func (r *EmailLogRepository) TerminalOutcomes(ctx context.Context, sendCtx model.SendContext) (map[string]string, error) {
	clause, arg := contextFilter(sendCtx)
	query := `SELECT contact_id, status FROM email_logs WHERE ` + clause + ` AND status IN ($2, $3)`

	rows, err := r.DB.QueryContext(ctx, query, arg, model.StatusSent, model.StatusFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	outcomes := map[string]string{}
	for rows.Next() {
		var contactID, status string
		if err := rows.Scan(&contactID, &status); err != nil {
			return nil, err
		}
		outcomes[contactID] = status
	}
	return outcomes, rows.Err()
}

// OpenCountsByCampaign aggregates opened_count per contact over the
// campaign's original-send logs only; follow-up logs never feed the
// engagement threshold.
func (r *EmailLogRepository) OpenCountsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	query := `
        SELECT contact_id, COALESCE(SUM(opened_count), 0)
        FROM email_logs
        WHERE campaign_id=$1 AND follow_up_campaign_id IS NULL
        GROUP BY contact_id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var contactID string
		var count int
		if err := rows.Scan(&contactID, &count); err != nil {
			return nil, err
		}
		counts[contactID] = count
	}
	return counts, rows.Err()
}

func (r *EmailLogRepository) ListByContext(ctx context.Context, sendCtx model.SendContext) ([]*model.EmailLog, error) {
	clause, arg := contextFilter(sendCtx)
	query := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE ` + clause + ` ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*model.EmailLog{}
	for rows.Next() {
		var l model.EmailLog
		err := rows.Scan(
			&l.ID, &l.CampaignID, &l.FollowUpCampaignID, &l.ContactID, &l.UserID, &l.RecipientEmail,
			&l.Subject, &l.Body, &l.Status, &l.ErrorMessage, &l.SentAt, &l.TrackingPixelID,
			&l.OpenedCount, &l.FirstOpenedAt, &l.LastOpenedAt, &l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// ListOpensByLog returns the full open history for one log, oldest first.
func (r *EmailLogRepository) ListOpensByLog(ctx context.Context, emailLogID string) ([]*model.EmailOpen, error) {
	query := `
        SELECT id, email_log_id, campaign_id, follow_up_campaign_id, contact_id, user_id, opened_at
        FROM email_opens WHERE email_log_id=$1 ORDER BY opened_at, id
    `
	rows, err := r.DB.QueryContext(ctx, query, emailLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opens := []*model.EmailOpen{}
	for rows.Next() {
		var o model.EmailOpen
		if err := rows.Scan(&o.ID, &o.EmailLogID, &o.CampaignID, &o.FollowUpCampaignID, &o.ContactID, &o.UserID, &o.OpenedAt); err != nil {
			return nil, err
		}
		opens = append(opens, &o)
	}
	return opens, rows.Err()
}

func (r *EmailLogRepository) StatusCounts(ctx context.Context, sendCtx model.SendContext) (map[string]int, error) {
	clause, arg := contextFilter(sendCtx)
	query := `SELECT status, COUNT(*) FROM email_logs WHERE ` + clause + ` GROUP BY status`

	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		model.StatusPending: 0,
		model.StatusSent:    0,
		model.StatusFailed:  0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func contextFilter(sendCtx model.SendContext) (clause, arg string) {
	if sendCtx.IsFollowUp() {
		return "follow_up_campaign_id=$1", sendCtx.FollowUpID()
	}
	return "campaign_id=$1 AND follow_up_campaign_id IS NULL", sendCtx.CampaignID()
}

var _ EmailLogRepositoryInterface = (*EmailLogRepository)(nil)
