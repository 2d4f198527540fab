package quote

import "time"

// session is a trading window within one day, minutes since midnight.
type session struct{ open, close int }

// Local exchange sessions. Holiday calendars are intentionally not
// consulted: the resolver is a wall-clock approximation, and fetching
// an exchange calendar is out of scope.
var (
	aShareSessions = []session{{9*60 + 30, 11*60 + 30}, {13 * 60, 15 * 60}}
	hkSessions     = []session{{9*60 + 30, 12 * 60}, {13 * 60, 16 * 60}}
)

// ResolveStatus derives OPEN/CLOSED for markets whose backend payload
// carries no usable flag (A-Share and HK). Every other region reports
// Unknown and relies on the adapter-supplied status instead.
func ResolveStatus(region Region, now time.Time) MarketStatus {
	var sessions []session
	switch region {
	case RegionSH, RegionSZ:
		sessions = aShareSessions
	case RegionHK:
		sessions = hkSessions
	default:
		return StatusUnknown
	}

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return StatusClosed
	}
	minutes := now.Hour()*60 + now.Minute()
	for _, s := range sessions {
		if minutes >= s.open && minutes <= s.close {
			return StatusOpen
		}
	}
	return StatusClosed
}
