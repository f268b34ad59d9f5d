// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"fmt"
	"time"
)

// Schedule computes the start of the next tick.
type Schedule interface {
	// Next returns the earliest start time strictly after t.
	Next(t time.Time) (time.Time, error)

	// String describes the schedule for logs.
	String() string
}

// Every returns a Schedule that fires d after the reference time.
func Every(d time.Duration) (Schedule, error) {
	if d <= 0 {
		return nil, fmt.Errorf("schedule: interval must be positive, got %s", d)
	}
	return interval(d), nil
}

type interval time.Duration

func (i interval) Next(t time.Time) (time.Time, error) {
	return t.Add(time.Duration(i)), nil
}

func (i interval) String() string {
	return "every " + time.Duration(i).String()
}
