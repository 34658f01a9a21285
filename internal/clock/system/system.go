// Package system provides a real clock implementation.
package system

import "time"

// Clock implements crawl.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC. Log partitioning and record
// timestamps both derive from this, so a run never straddles time zones.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
