package policy

import (
	"strconv"
	"strings"
	"time"
)

// parseHour pulls the hour out of an "HH:MM" setting. Minutes are
// accepted in the config but the lock works at hour granularity.
func parseHour(hhmm string) (int, bool) {
	h, _, _ := strings.Cut(hhmm, ":")
	n, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || n < 0 || n > 23 {
		return 0, false
	}
	return n, true
}

// ShouldBeClosed reports whether the clock says the group belongs in
// the closed window. The close hour itself is inside the window, the
// open hour is outside it. Overnight windows (close > open) are the
// normal case.
func ShouldBeClosed(now time.Time, closeTime, openTime string) bool {
	closeHour, ok := parseHour(closeTime)
	if !ok {
		return false
	}
	openHour, ok := parseHour(openTime)
	if !ok {
		return false
	}
	h := now.Hour()
	if closeHour == openHour {
		return false
	}
	if closeHour > openHour {
		return h >= closeHour || h < openHour
	}
	return h >= closeHour && h < openHour
}

const closedTitleSuffix = " (❌ مغلق)"

// LockedTitle marks a group title as night-locked. Applying it twice
// does not stack the suffix.
func LockedTitle(name string) string {
	if IsLockedTitle(name) {
		return name
	}
	return name + closedTitleSuffix
}

// IsLockedTitle reports whether name already carries the lock marker.
func IsLockedTitle(name string) bool {
	return strings.HasSuffix(name, closedTitleSuffix)
}

// EvaluateAntiTime decides whether the scheduler tick should flip the
// group. It compares the clock's verdict against the last applied
// Status, so repeated ticks inside the same window are no-ops.
func EvaluateAntiTime(s Settings, now time.Time) Action {
	tl := s.AntiTime
	if !tl.Enabled {
		return none
	}
	closed := ShouldBeClosed(now, tl.CloseTime, tl.OpenTime)
	switch {
	case closed && tl.Status != StatusClosed:
		return Action{
			Kind:    CloseGroup,
			Reason:  "scheduled night lock",
			Message: "🌙 *Group closed*\n\nThe group is locked for the night. Only admins can send messages until " + tl.OpenTime + ".",
		}
	case !closed && tl.Status == StatusClosed:
		return Action{
			Kind:    OpenGroup,
			Reason:  "scheduled morning unlock",
			Message: "☀️ *Group opened*\n\nGood morning! Everyone can send messages again.",
		}
	}
	return none
}
