// internal/mailer/template.go
package mailer

import (
	"strings"

	"github.com/wishsend/wishsend-backend/internal/model"
)

// RenderMode selects the fallback behavior for unresolved sender fields.
// Previews substitute a human-readable label so the user sees where a value
// is missing; outbound messages substitute an empty string because a label
// must never reach a recipient.
type RenderMode int

const (
	ModePreview RenderMode = iota
	ModeSend
)

// token is one recognized bracketed placeholder. The set is closed: anything
// not listed here passes through verbatim, with an exact case-sensitive
// match required.
type token struct {
	literal string
	resolve func(c *model.Contact, p *model.UserProfile) string
	// previewFallback replaces an empty resolved value in preview mode.
	// sendFallback does the same at send time.
	previewFallback string
	sendFallback    string
}

var tokens = []token{
	{
		literal: "[First Name]",
		resolve: func(c *model.Contact, _ *model.UserProfile) string { return c.FirstName },
	},
	{
		literal:         "[Company]",
		resolve:         func(c *model.Contact, _ *model.UserProfile) string { return c.Company },
		previewFallback: "your company",
		sendFallback:    "your company",
	},
	{
		literal:         "[Your Name]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.FullName },
		previewFallback: "Your Name",
	},
	{
		literal:         "[Your Title]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.JobTitle },
		previewFallback: "Your Title",
	},
	{
		literal:         "[Your Company]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.CompanyName },
		previewFallback: "Your Company",
	},
	{
		literal:         "[Your Bio]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.Bio },
		previewFallback: "Your Bio",
	},
	{
		literal:         "[Your Phone]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.Phone },
		previewFallback: "Your Phone",
	},
	{
		literal:         "[Your Website]",
		resolve:         func(_ *model.Contact, p *model.UserProfile) string { return p.Website },
		previewFallback: "Your Website",
	},
}

// Personalize substitutes every recognized token in tmpl with the
// corresponding contact or profile field. profile may be nil, in which case
// sender tokens resolve to their empty-value fallback. The function is pure
// and idempotent: a template with no recognized tokens left comes back
// unchanged.
func Personalize(tmpl string, contact *model.Contact, profile *model.UserProfile, mode RenderMode) string {
	out := tmpl
	for _, t := range tokens {
		val := ""
		if contact != nil || profile != nil {
			val = resolveToken(t, contact, profile)
		}
		if val == "" {
			if mode == ModePreview {
				val = t.previewFallback
			} else {
				val = t.sendFallback
			}
		}
		out = strings.ReplaceAll(out, t.literal, val)
	}
	return out
}

func resolveToken(t token, contact *model.Contact, profile *model.UserProfile) string {
	// Resolver closures only touch one of the two records; guard the one
	// they need.
	switch t.literal {
	case "[First Name]", "[Company]":
		if contact == nil {
			return ""
		}
	default:
		if profile == nil {
			return ""
		}
	}
	return t.resolve(contact, profile)
}

// NewlinesToBreaks converts plain-text newlines into HTML line breaks. The
// campaign body is authored as plain text but delivered as text/html.
func NewlinesToBreaks(body string) string {
	return strings.ReplaceAll(body, "\n", "<br>")
}
