package clock

import "time"

// SystemClock reads the wall clock in UTC at microsecond precision, the resolution
// Postgres keeps for timestamptz.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
