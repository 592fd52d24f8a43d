package repository

import (
	"context"
	"database/sql"

	"github.com/wishsend/wishsend-backend/internal/model"
)

type SettingsRepositoryInterface interface {
	GetSMTPSettings(ctx context.Context, userID string) (*model.SMTPSettings, error)
	UpsertSMTPSettings(ctx context.Context, s *model.SMTPSettings) error
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, p *model.UserProfile) error
}

type SettingsRepository struct {
	DB *sql.DB
}

func (r *SettingsRepository) GetSMTPSettings(ctx context.Context, userID string) (*model.SMTPSettings, error) {
	query := `
        SELECT user_id, smtp_host, smtp_port, smtp_user, smtp_pass, smtp_from
        FROM user_settings WHERE user_id=$1
    `
	var s model.SMTPSettings
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.Host, &s.Port, &s.Username, &s.Password, &s.From,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) UpsertSMTPSettings(ctx context.Context, s *model.SMTPSettings) error {
	query := `
        INSERT INTO user_settings (user_id, smtp_host, smtp_port, smtp_user, smtp_pass, smtp_from)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE
        SET smtp_host=EXCLUDED.smtp_host, smtp_port=EXCLUDED.smtp_port,
            smtp_user=EXCLUDED.smtp_user, smtp_pass=EXCLUDED.smtp_pass,
            smtp_from=EXCLUDED.smtp_from
    `
	_, err := r.DB.ExecContext(ctx, query, s.UserID, s.Host, s.Port, s.Username, s.Password, s.From)
	return err
}

func (r *SettingsRepository) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	query := `
        SELECT user_id, full_name, job_title, company_name, bio, phone, website,
            signature_enabled, signature_name, signature_title, signature_phone,
            signature_email, signature_website, signature_linkedin, signature_custom_text,
            logo_enabled, company_logo_url, logo_size, logo_padding
        FROM user_profiles WHERE user_id=$1
    `
	var p model.UserProfile
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.FullName, &p.JobTitle, &p.CompanyName, &p.Bio, &p.Phone, &p.Website,
		&p.SignatureEnabled, &p.SignatureName, &p.SignatureTitle, &p.SignaturePhone,
		&p.SignatureEmail, &p.SignatureWebsite, &p.SignatureLinkedIn, &p.SignatureCustomText,
		&p.LogoEnabled, &p.CompanyLogoURL, &p.LogoSize, &p.LogoPadding,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SettingsRepository) UpsertProfile(ctx context.Context, p *model.UserProfile) error {
	query := `
        INSERT INTO user_profiles (user_id, full_name, job_title, company_name, bio, phone, website,
            signature_enabled, signature_name, signature_title, signature_phone,
            signature_email, signature_website, signature_linkedin, signature_custom_text,
            logo_enabled, company_logo_url, logo_size, logo_padding)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
        ON CONFLICT (user_id) DO UPDATE
        SET full_name=EXCLUDED.full_name, job_title=EXCLUDED.job_title,
            company_name=EXCLUDED.company_name, bio=EXCLUDED.bio, phone=EXCLUDED.phone,
            website=EXCLUDED.website, signature_enabled=EXCLUDED.signature_enabled,
            signature_name=EXCLUDED.signature_name, signature_title=EXCLUDED.signature_title,
            signature_phone=EXCLUDED.signature_phone, signature_email=EXCLUDED.signature_email,
            signature_website=EXCLUDED.signature_website, signature_linkedin=EXCLUDED.signature_linkedin,
            signature_custom_text=EXCLUDED.signature_custom_text, logo_enabled=EXCLUDED.logo_enabled,
            company_logo_url=EXCLUDED.company_logo_url, logo_size=EXCLUDED.logo_size,
            logo_padding=EXCLUDED.logo_padding
    `
	_, err := r.DB.ExecContext(ctx, query,
		p.UserID, p.FullName, p.JobTitle, p.CompanyName, p.Bio, p.Phone, p.Website,
		p.SignatureEnabled, p.SignatureName, p.SignatureTitle, p.SignaturePhone,
		p.SignatureEmail, p.SignatureWebsite, p.SignatureLinkedIn, p.SignatureCustomText,
		p.LogoEnabled, p.CompanyLogoURL, p.LogoSize, p.LogoPadding,
	)
	return err
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
