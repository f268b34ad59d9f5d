// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// fieldSpec names one cron column and its inclusive bounds.
type fieldSpec struct {
	name     string
	minimum  int
	maximum  int
	extract  func(time.Time) int
	advance func(time.Time) time.Time
}

var cronFields = [5]fieldSpec{
	{
		name: "minute", minimum: 0, maximum: 59,
		extract:  func(t time.Time) int { return t.Minute() },
		advance: func(t time.Time) time.Time { return t.Add(time.Minute) },
	},
	{
		name: "hour", minimum: 0, maximum: 23,
		extract: func(t time.Time) int { return t.Hour() },
		advance: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, time.UTC)
		},
	},
	{
		name: "day-of-month", minimum: 1, maximum: 31,
		extract: func(t time.Time) int { return t.Day() },
		advance: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
		},
	},
	{
		name: "month", minimum: 1, maximum: 12,
		extract: func(t time.Time) int { return int(t.Month()) },
		advance: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		},
	},
	{
		name: "day-of-week", minimum: 0, maximum: 6,
		extract: func(t time.Time) int { return int(t.Weekday()) },
		advance: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
		},
	},
}

// searchOrder checks the coarsest field first so each mismatch skips
// as much time as possible.
var searchOrder = [5]int{3, 2, 4, 1, 0}

type valueSet uint64

func (s valueSet) contains(value int) bool { return s&(1<<uint(value)) != 0 }

// Cron is a parsed 5-field cron expression.
type Cron struct {
	expression string
	sets       [5]valueSet
}

// ParseCron parses a 5-field cron expression.
func ParseCron(expression string) (*Cron, error) {
	fields := strings.Fields(expression)
	if len(fields) != len(cronFields) {
		return nil, fmt.Errorf("schedule: cron expression needs 5 fields, got %d", len(fields))
	}

	parsed := &Cron{expression: strings.Join(fields, " ")}
	for index, spec := range cronFields {
		set, err := parseCronField(fields[index], spec)
		if err != nil {
			return nil, fmt.Errorf("schedule: %s field: %w", spec.name, err)
		}
		parsed.sets[index] = set
	}
	return parsed, nil
}

// Next returns the first matching minute strictly after t, in UTC.
// Gives up after four years so impossible dates (Feb 30) terminate.
func (c *Cron) Next(t time.Time) (time.Time, error) {
	candidate := t.UTC().Truncate(time.Minute).Add(time.Minute)
	limit := candidate.AddDate(4, 0, 0)

search:
	for candidate.Before(limit) {
		for _, index := range searchOrder {
			spec := cronFields[index]
			if !c.sets[index].contains(spec.extract(candidate)) {
				candidate = spec.advance(candidate)
				continue search
			}
		}
		return candidate, nil
	}
	return time.Time{}, fmt.Errorf("schedule: %q never matches within four years of %s",
		c.expression, t.UTC().Format(time.RFC3339))
}

func (c *Cron) String() string { return "cron " + c.expression }

func parseCronField(field string, spec fieldSpec) (valueSet, error) {
	var set valueSet
	for _, term := range strings.Split(field, ",") {
		start, end, step, err := parseCronTerm(term, spec)
		if err != nil {
			return 0, err
		}
		for value := start; value <= end; value += step {
			set |= 1 << uint(value)
		}
	}
	return set, nil
}

// parseCronTerm handles *, */N, V, V-V and V-V/N.
func parseCronTerm(term string, spec fieldSpec) (start, end, step int, err error) {
	rangePart, stepPart, hasStep := strings.Cut(term, "/")
	step = 1
	if hasStep {
		step, err = strconv.Atoi(stepPart)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid step %q", stepPart)
		}
		if step <= 0 {
			return 0, 0, 0, fmt.Errorf("step must be positive, got %d", step)
		}
	}

	switch {
	case rangePart == "*":
		start, end = spec.minimum, spec.maximum
	case strings.Contains(rangePart, "-"):
		low, high, _ := strings.Cut(rangePart, "-")
		if start, err = strconv.Atoi(low); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid range start %q", low)
		}
		if end, err = strconv.Atoi(high); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid range end %q", high)
		}
		if start > end {
			return 0, 0, 0, fmt.Errorf("range start %d > end %d", start, end)
		}
	default:
		if start, err = strconv.Atoi(rangePart); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid value %q", rangePart)
		}
		end = start
	}

	if start < spec.minimum || end > spec.maximum {
		return 0, 0, 0, fmt.Errorf("value out of range [%d-%d]: got %d-%d", spec.minimum, spec.maximum, start, end)
	}
	return start, end, step, nil
}
