package mailer

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTrackingPixelIDIsOpaqueAndUnique(t *testing.T) {
	a := NewTrackingPixelID()
	b := NewTrackingPixelID()

	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestPixelURL(t *testing.T) {
	assert.Equal(t,
		"https://api.example.com/track-email-open?id=abc",
		PixelURL("https://api.example.com", "abc"))
	assert.Equal(t,
		"https://api.example.com/track-email-open?id=abc",
		PixelURL("https://api.example.com/", "abc"))
}

func TestEmbedPixelAppendsInvisibleImage(t *testing.T) {
	got := EmbedPixel("<p>hello</p>", "https://api.example.com", "abc")

	assert.True(t, strings.HasPrefix(got, "<p>hello</p>"))
	assert.Contains(t, got, `src="https://api.example.com/track-email-open?id=abc"`)
	assert.Contains(t, got, `width="1" height="1"`)
	assert.Contains(t, got, "display:block;width:1px;height:1px;")
}
