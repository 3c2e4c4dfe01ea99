package chat

import (
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// labelWidth is the maximum display width of a conversation label before
// it is cut with an ellipsis.
const labelWidth = 50

// Label returns the display label for a conversation: a truncated prefix of
// its first message, or for an empty conversation a human-readable creation
// time parsed back out of its id.
func Label(c *Conversation) string {
	if len(c.Messages) > 0 {
		return truncateLabel(c.Messages[0].Content)
	}
	if ms, err := strconv.ParseInt(c.ID, 10, 64); err == nil {
		ts := time.UnixMilli(ms).Format("1/2/2006, 3:04:05 PM")
		return "New Chat (" + ts + ")"
	}
	return "New Chat"
}

// truncateLabel collapses the text to one line and cuts it at labelWidth
// display cells. Width-aware so CJK input truncates cleanly.
func truncateLabel(text string) string {
	line := strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(line) <= labelWidth {
		return line
	}
	return runewidth.Truncate(line, labelWidth, "...")
}
