package clock

import "time"

// Clock is the source of "now" for sessions, bookings and subscription dates.
// Calendar dates are derived from Now in UTC.
type Clock interface {
	Now() time.Time
}
