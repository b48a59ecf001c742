package common

import "time"

// for time mock
type Clock interface {
	Now() time.Time
}

type DefaultClock struct{}

func NewDefaultClock() Clock {
	return &DefaultClock{}
}

func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
