// Package announce renders the text posted to the chat platform.
// Pure functions only.
package announce

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxThreadNameRunes is the chat platform's limit on thread names.
const MaxThreadNameRunes = 100

// MaxMessageRunes is the chat platform's limit on message content.
const MaxMessageRunes = 2000

// RemovalNotice is posted into a thread whose submission left the queue
// without a verdict.
const RemovalNotice = "This run has been removed from the queue."

const (
	unknownPlayer   = "Unknown player"
	unknownCategory = "Unknown category"
)

// FormatHMS renders an elapsed time in seconds as e.g. "1h23m45s" or "23m45.67s".
// Hours are omitted when zero; fractional seconds appear only when non-integral.
func FormatHMS(secs float64) string {
	if secs < 0 || math.IsNaN(secs) {
		secs = 0
	}
	centis := int64(math.Round(secs * 100))
	whole := centis / 100
	frac := centis % 100

	hours := whole / 3600
	mins := (whole / 60) % 60
	s := whole % 60

	var secPart string
	if frac == 0 {
		secPart = fmt.Sprintf("%02d", s)
	} else {
		secPart = fmt.Sprintf("%02d.%02d", s, frac)
	}

	if hours > 0 {
		return fmt.Sprintf("%dh%02dm%ss", hours, mins, secPart)
	}
	return fmt.Sprintf("%dm%ss", mins, secPart)
}

// ThreadTitle builds "{player} - {category} in {time}", falling back to
// placeholders for missing names. The result is NFC-normalised and fits
// MaxThreadNameRunes.
func ThreadTitle(player, category string, primarySecs float64) string {
	player = strings.TrimSpace(player)
	if player == "" {
		player = unknownPlayer
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = unknownCategory
	}
	title := fmt.Sprintf("%s - %s in %s", player, category, FormatHMS(primarySecs))
	return Truncate(title, MaxThreadNameRunes)
}

// FinalTitle prefixes a thread name with a status symbol.
// A name that already carries the symbol is returned unchanged so that
// replaying a finalize after a crash does not stack prefixes.
func FinalTitle(symbol, name string) string {
	if strings.HasPrefix(name, symbol) {
		return Truncate(name, MaxThreadNameRunes)
	}
	return Truncate(symbol+" "+name, MaxThreadNameRunes)
}

// MessageContent is the reference message posted into a new thread.
func MessageContent(weblink string) string {
	return strings.TrimSpace(weblink)
}

// Truncate NFC-normalises s and cuts it to at most max runes, marking the
// cut with an ellipsis.
func Truncate(s string, max int) string {
	s = norm.NFC.String(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
