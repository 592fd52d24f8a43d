package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginalSendContext(t *testing.T) {
	ctx := OriginalSend("campaign-1")

	assert.False(t, ctx.IsFollowUp())
	assert.Equal(t, "campaign-1", ctx.CampaignID())
	assert.Empty(t, ctx.FollowUpID())
	assert.Nil(t, ctx.FollowUpRef())
}

func TestFollowUpSendContext(t *testing.T) {
	ctx := FollowUpSend("follow-up-1", "campaign-1")

	assert.True(t, ctx.IsFollowUp())
	assert.Equal(t, "campaign-1", ctx.CampaignID())
	assert.Equal(t, "follow-up-1", ctx.FollowUpID())
	require.NotNil(t, ctx.FollowUpRef())
	assert.Equal(t, "follow-up-1", *ctx.FollowUpRef())
}

func TestSMTPSettingsConfigured(t *testing.T) {
	var nilSettings *SMTPSettings
	assert.False(t, nilSettings.Configured())
	assert.False(t, (&SMTPSettings{Host: "smtp.example.com", Port: 587}).Configured())
	assert.True(t, (&SMTPSettings{Host: "smtp.example.com", Port: 587, From: "me@example.com"}).Configured())
}

func TestEmailLogTerminal(t *testing.T) {
	assert.False(t, (&EmailLog{Status: StatusPending}).Terminal())
	assert.True(t, (&EmailLog{Status: StatusSent}).Terminal())
	assert.True(t, (&EmailLog{Status: StatusFailed}).Terminal())
}
