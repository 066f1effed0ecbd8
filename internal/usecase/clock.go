package usecase

import "time"

// Clock abstracts time retrieval so policy comparisons are deterministic in
// tests. Business logic never reads the wall clock directly.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
