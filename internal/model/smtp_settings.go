// internal/model/smtp_settings.go
package model

// SMTPSettings is the per-user credential bundle for the mail transport.
type SMTPSettings struct {
	UserID   string `db:"user_id" json:"user_id"`
	Host     string `db:"smtp_host" json:"smtp_host"`
	Port     int    `db:"smtp_port" json:"smtp_port"`
	Username string `db:"smtp_user" json:"smtp_user"`
	Password string `db:"smtp_pass" json:"-"`
	From     string `db:"smtp_from" json:"smtp_from"`
}

// Configured reports whether the settings are complete enough to send.
func (s *SMTPSettings) Configured() bool {
	return s != nil && s.Host != "" && s.Port != 0 && s.From != ""
}
