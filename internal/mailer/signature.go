// internal/mailer/signature.go
package mailer

import (
	"fmt"
	"html"
	"strings"

	"github.com/wishsend/wishsend-backend/internal/model"
)

// SignatureOptions controls optional logo rendering for one message.
type SignatureOptions struct {
	IncludeLogo bool
	LogoURL     string
}

var logoSizes = map[string]string{
	"small":  "100px",
	"medium": "150px",
	"large":  "200px",
}

var logoPaddings = map[string]string{
	"none":   "0px",
	"small":  "5px",
	"medium": "10px",
	"large":  "15px",
}

// ComposeSignature renders the HTML signature block appended to outbound
// bodies. It returns an empty string when the profile has signatures
// disabled, or when no signature field and no logo are present. Every
// profile value is HTML-escaped before it reaches the markup; nothing
// user-supplied is ever rendered raw.
func ComposeSignature(profile *model.UserProfile, opts SignatureOptions) string {
	if profile == nil || !profile.SignatureEnabled {
		return ""
	}

	hasAnyField := profile.SignatureName != "" ||
		profile.SignatureTitle != "" ||
		profile.SignaturePhone != "" ||
		profile.SignatureEmail != "" ||
		profile.SignatureWebsite != "" ||
		profile.SignatureLinkedIn != "" ||
		profile.SignatureCustomText != ""

	if !hasAnyField && !opts.IncludeLogo {
		return ""
	}

	var parts []string
	parts = append(parts, `<div style="margin-top: 30px; padding-top: 20px; border-top: 2px solid #e5e7eb; font-family: Arial, sans-serif; color: #374151; font-size: 14px; line-height: 1.6;">`)

	if opts.IncludeLogo && opts.LogoURL != "" && profile.LogoEnabled {
		maxWidth, ok := logoSizes[profile.LogoSize]
		if !ok {
			maxWidth = logoSizes["medium"]
		}
		padding, ok := logoPaddings[profile.LogoPadding]
		if !ok {
			padding = logoPaddings["medium"]
		}
		parts = append(parts, fmt.Sprintf(
			`<div style="margin-bottom: 15px;"><img src="%s" alt="Company Logo" style="max-width: %s; height: auto; padding: %s;" /></div>`,
			html.EscapeString(opts.LogoURL), maxWidth, padding,
		))
	}

	if profile.SignatureName != "" {
		parts = append(parts, fmt.Sprintf(
			`<div style="font-size: 16px; font-weight: 600; color: #111827; margin-bottom: 4px;">%s</div>`,
			html.EscapeString(profile.SignatureName),
		))
	}

	if profile.SignatureTitle != "" {
		parts = append(parts, fmt.Sprintf(
			`<div style="color: #6b7280; margin-bottom: 8px;">%s</div>`,
			html.EscapeString(profile.SignatureTitle),
		))
	}

	if profile.SignatureCustomText != "" {
		parts = append(parts, fmt.Sprintf(
			`<div style="margin-bottom: 12px; font-style: italic; color: #4b5563;">%s</div>`,
			html.EscapeString(profile.SignatureCustomText),
		))
	}

	var contactParts []string

	if profile.SignaturePhone != "" {
		contactParts = append(contactParts, contactLine("Phone",
			"tel:"+html.EscapeString(profile.SignaturePhone),
			html.EscapeString(profile.SignaturePhone)))
	}

	if profile.SignatureEmail != "" {
		contactParts = append(contactParts, contactLine("Email",
			"mailto:"+html.EscapeString(profile.SignatureEmail),
			html.EscapeString(profile.SignatureEmail)))
	}

	if profile.SignatureWebsite != "" {
		websiteURL := profile.SignatureWebsite
		if !strings.HasPrefix(websiteURL, "http") {
			websiteURL = "https://" + websiteURL
		}
		contactParts = append(contactParts, contactLine("Website",
			html.EscapeString(websiteURL),
			html.EscapeString(profile.SignatureWebsite)))
	}

	if profile.SignatureLinkedIn != "" {
		linkedinURL := profile.SignatureLinkedIn
		if !strings.HasPrefix(linkedinURL, "http") {
			linkedinURL = "https://linkedin.com/in/" + linkedinURL
		}
		contactParts = append(contactParts, contactLine("LinkedIn",
			html.EscapeString(linkedinURL),
			html.EscapeString(profile.SignatureLinkedIn)))
	}

	if len(contactParts) > 0 {
		parts = append(parts, fmt.Sprintf(`<div style="margin-top: 10px;">%s</div>`, strings.Join(contactParts, "")))
	}

	parts = append(parts, `</div>`)
	return strings.Join(parts, "\n")
}

func contactLine(label, href, display string) string {
	return fmt.Sprintf(
		`<div style="margin-bottom: 4px;"><span style="color: #6b7280;">%s:</span> <a href="%s" style="color: #2563eb; text-decoration: none;">%s</a></div>`,
		label, href, display,
	)
}
