// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"math"
)

// Grade is the self-assessment given after revealing a card's answer.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Valid reports whether g is one of the four known grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	}
	return false
}

// CardState is the scheduling state of a card that has been reviewed at least
// once. Timestamps are Unix milliseconds so progress files stay compatible
// with the browser review app.
type CardState struct {
	Ease         float64 `json:"ease" yaml:"ease"`
	IntervalDays float64 `json:"intervalDays" yaml:"interval_days"`
	Reps         int     `json:"reps" yaml:"reps"`
	DueTs        int64   `json:"dueTs" yaml:"due_ts"`
	LastTs       int64   `json:"lastTs,omitempty" yaml:"last_ts,omitempty"`
	LastGrade    Grade   `json:"lastGrade,omitempty" yaml:"last_grade,omitempty"`
}

// UnmarshalJSON accepts fractional millisecond timestamps, which the browser
// app writes when a due date lands between milliseconds.
func (s *CardState) UnmarshalJSON(data []byte) error {
	type plain CardState
	var aux struct {
		plain
		DueTs  float64 `json:"dueTs"`
		LastTs float64 `json:"lastTs"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = CardState(aux.plain)
	s.DueTs = int64(math.Round(aux.DueTs))
	s.LastTs = int64(math.Round(aux.LastTs))
	return nil
}

// DayHistory counts reviews completed on one local calendar day.
type DayHistory struct {
	Done int `json:"done" yaml:"done"`
}

// Progress is the portable review progress document. Card keys are
// "<deck>/<card id>"; history keys are "YYYY-MM-DD".
type Progress struct {
	Cards   map[string]CardState  `json:"cards" yaml:"cards"`
	History map[string]DayHistory `json:"history" yaml:"history"`
}
