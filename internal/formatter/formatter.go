// package formatter renders candidate lists and attachment metadata for the chat transport
package formatter

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

// MaxButtonLabel is the longest label the chat transport renders cleanly.
const MaxButtonLabel = 60

// RenderResults produces the message body shown above the selection buttons:
// one numbered "artist — title" line per candidate plus a hint line.
func RenderResults(candidates []models.Candidate) string {
	var buf bytes.Buffer

	for i, c := range candidates {
		buf.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, c.Artist, c.Title))
	}

	buf.WriteString("\nPick a track to get the audio.")
	return buf.String()
}

// ButtonLabel produces the "artist - title" label for one selection button,
// truncated to [MaxButtonLabel] runes.
func ButtonLabel(c models.Candidate) string {
	return shared.Truncate(fmt.Sprintf("%s - %s", c.Artist, c.Title), MaxButtonLabel)
}

// AttachmentName builds a transport-safe file name for a fetched track.
func AttachmentName(c models.Candidate, ext string) string {
	return shared.SanitizeFileName(fmt.Sprintf("%s - %s.%s", c.Artist, c.Title, ext))
}
