package application

import "time"

// Clock abstracts time so use-cases can be tested with a fixed instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default implementation backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
