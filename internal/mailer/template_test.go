package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wishsend/wishsend-backend/internal/model"
)

func TestPersonalizeSubstitutesAllTokens(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada", Company: "Analytical Engines"}
	profile := &model.UserProfile{
		FullName:    "Grace Hopper",
		JobTitle:    "Rear Admiral",
		CompanyName: "US Navy",
		Bio:         "Compiler pioneer",
		Phone:       "555-0100",
		Website:     "example.com",
	}

	tmpl := "Hi [First Name] at [Company], this is [Your Name], [Your Title] at [Your Company]. [Your Bio] [Your Phone] [Your Website]"
	got := Personalize(tmpl, contact, profile, ModeSend)

	assert.Equal(t, "Hi Ada at Analytical Engines, this is Grace Hopper, Rear Admiral at US Navy. Compiler pioneer 555-0100 example.com", got)
}

func TestPersonalizeUnknownTokensPassThrough(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada"}
	got := Personalize("Hi [First Name], [Favorite Color] and [first name]", contact, nil, ModeSend)
	assert.Equal(t, "Hi Ada, [Favorite Color] and [first name]", got)
}

func TestPersonalizeCompanyFallback(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada", Company: ""}

	// Both modes substitute the same neutral phrase for a missing company.
	assert.Equal(t, "Greetings from your company", Personalize("Greetings from [Company]", contact, nil, ModeSend))
	assert.Equal(t, "Greetings from your company", Personalize("Greetings from [Company]", contact, nil, ModePreview))
}

func TestPersonalizeSenderFallbacksDifferByMode(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada"}

	// Preview shows a readable label so the gap is visible to the author.
	preview := Personalize("From [Your Name], [Your Title]", contact, nil, ModePreview)
	assert.Equal(t, "From Your Name, Your Title", preview)

	// A send must never leak a placeholder label to the recipient.
	sent := Personalize("From [Your Name], [Your Title]", contact, nil, ModeSend)
	assert.Equal(t, "From , ", sent)
}

func TestPersonalizeNilProfile(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada", Company: "Acme"}
	got := Personalize("[First Name] / [Company] / [Your Name]", contact, nil, ModeSend)
	assert.Equal(t, "Ada / Acme / ", got)
}

func TestPersonalizeIdempotent(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada", Company: "Acme"}
	profile := &model.UserProfile{FullName: "Grace"}

	once := Personalize("Hi [First Name] from [Your Name]", contact, profile, ModeSend)
	twice := Personalize(once, contact, profile, ModeSend)
	assert.Equal(t, once, twice)
}

func TestPersonalizeCaseSensitive(t *testing.T) {
	contact := &model.Contact{FirstName: "Ada"}
	got := Personalize("[FIRST NAME] [First Name]", contact, nil, ModeSend)
	assert.Equal(t, "[FIRST NAME] Ada", got)
}

func TestNewlinesToBreaks(t *testing.T) {
	assert.Equal(t, "line one<br>line two<br><br>line four", NewlinesToBreaks("line one\nline two\n\nline four"))
	assert.Equal(t, "no newlines", NewlinesToBreaks("no newlines"))
}
