// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review schedules card reviews with an SM-2 style algorithm and
// picks the cards for each review session.
//
// Card states and timestamps use the same shape as the browser review app
// (Unix milliseconds, fractional interval days) so progress moves freely
// between the two.
package review

import (
	"math"
	"time"

	"github.com/pdiddy/commute-review/pkg/types"
)

const (
	defaultEase = 2.5
	minEase     = 1.3
	maxEase     = 2.7

	// againInterval is the interval after a failed recall, in days.
	againInterval = 0.3

	// againDelay is how long a failed card waits before it is due again, in days.
	againDelay = 0.15

	minHardDelay = 0.5
	hardFactor   = 0.7

	dayMillis = 24 * 60 * 60 * 1000
)

// Quality maps a grade to its SM-2 quality score (0-5). Unknown grades
// count as good.
func Quality(g types.Grade) int {
	switch g {
	case types.GradeAgain:
		return 1
	case types.GradeHard:
		return 3
	case types.GradeEasy:
		return 5
	default:
		return 4
	}
}

// NewState is the state of a card that has never been reviewed.
func NewState() types.CardState {
	return types.CardState{Ease: defaultEase}
}

// Update returns the state after grading a card at now.
func Update(st types.CardState, grade types.Grade, now time.Time) types.CardState {
	ease := st.Ease
	if ease == 0 {
		ease = defaultEase
	}
	interval := st.IntervalDays
	reps := st.Reps

	q := Quality(grade)
	if q < 3 {
		reps = 0
		interval = againInterval
	} else {
		reps++
		switch reps {
		case 1:
			interval = 1
		case 2:
			interval = 3
		default:
			interval = math.Max(1, round(interval*ease))
		}
	}

	miss := float64(5 - q)
	ease += 0.1 - miss*(0.08+miss*0.02)
	ease = math.Min(maxEase, math.Max(minEase, ease))

	var delay float64
	switch grade {
	case types.GradeAgain:
		delay = againDelay
	case types.GradeHard:
		delay = math.Max(minHardDelay, interval*hardFactor)
	default:
		delay = interval
	}

	nowMs := now.UnixMilli()
	return types.CardState{
		Ease:         ease,
		IntervalDays: interval,
		Reps:         reps,
		DueTs:        nowMs + int64(math.Round(delay*dayMillis)),
		LastTs:       nowMs,
		LastGrade:    grade,
	}
}

// IsDue reports whether a reviewed card is due at now.
func IsDue(st types.CardState, now time.Time) bool {
	return st.DueTs <= now.UnixMilli()
}

// DayKey is the history key for the local calendar day of t.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// round rounds half up, so 4.5 becomes 5.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
