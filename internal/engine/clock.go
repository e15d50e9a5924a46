package engine

import "time"

// Clock supplies the current time to the scheduler and, through it, to
// every lifecycle decision. All elapsed-time math compares Clock.Now()
// against submission creation times; nothing reads the wall clock
// directly.
//
// Production uses SystemClock. Tests use testutil.FixedClock to pin time
// and step it through timing windows deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
