// internal/model/user_profile.go
package model

// UserProfile carries the sender identity used for personalization and the
// signature block settings.
type UserProfile struct {
	UserID              string `db:"user_id" json:"user_id"`
	FullName            string `db:"full_name" json:"full_name"`
	JobTitle            string `db:"job_title" json:"job_title"`
	CompanyName         string `db:"company_name" json:"company_name"`
	Bio                 string `db:"bio" json:"bio"`
	Phone               string `db:"phone" json:"phone"`
	Website             string `db:"website" json:"website"`
	SignatureEnabled    bool   `db:"signature_enabled" json:"signature_enabled"`
	SignatureName       string `db:"signature_name" json:"signature_name"`
	SignatureTitle      string `db:"signature_title" json:"signature_title"`
	SignaturePhone      string `db:"signature_phone" json:"signature_phone"`
	SignatureEmail      string `db:"signature_email" json:"signature_email"`
	SignatureWebsite    string `db:"signature_website" json:"signature_website"`
	SignatureLinkedIn   string `db:"signature_linkedin" json:"signature_linkedin"`
	SignatureCustomText string `db:"signature_custom_text" json:"signature_custom_text"`
	LogoEnabled         bool   `db:"logo_enabled" json:"logo_enabled"`
	CompanyLogoURL      string `db:"company_logo_url" json:"company_logo_url"`
	LogoSize            string `db:"logo_size" json:"logo_size"`       // small, medium, large
	LogoPadding         string `db:"logo_padding" json:"logo_padding"` // none, small, medium, large
}
