// internal/mailer/pixel.go
package mailer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewTrackingPixelID generates a fresh opaque tracking identifier. Random
// 128-bit values make collisions improbable enough that they are not checked.
func NewTrackingPixelID() string {
	return uuid.NewString()
}

// PixelURL builds the address the embedded pixel points at.
func PixelURL(baseURL, trackingID string) string {
	return fmt.Sprintf("%s/track-email-open?id=%s", strings.TrimRight(baseURL, "/"), trackingID)
}

// EmbedPixel appends a single invisible 1x1 image reference carrying
// trackingID to an HTML body. Called after all other substitutions so no
// later replacement can disturb the markup.
func EmbedPixel(htmlBody, baseURL, trackingID string) string {
	pixel := fmt.Sprintf(
		`<img src="%s" width="1" height="1" alt="" style="display:block;width:1px;height:1px;" />`,
		PixelURL(baseURL, trackingID),
	)
	return htmlBody + pixel
}
