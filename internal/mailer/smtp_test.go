package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessageHeaders(t *testing.T) {
	raw := buildMessage(Message{
		From:    "me@example.com",
		To:      "you@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
	})

	lines := strings.Split(raw, "\r\n")
	assert.Equal(t, "From: me@example.com", lines[0])
	assert.Equal(t, "To: you@example.com", lines[1])
	assert.Equal(t, "Subject: Hello", lines[2])
	assert.Equal(t, "MIME-Version: 1.0", lines[3])
	assert.Equal(t, "Content-Type: text/html; charset=utf-8", lines[4])
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "<p>hi</p>", lines[6])
}
