package models

import "time"

// AlphaSession is one workout parsed from an Alpha Progression export.
// Name is the raw header; Session and Week are derived from it.
type AlphaSession struct {
	Name      string
	Session   string
	Week      int
	Date      time.Time
	Duration  string
	Exercises []AlphaExercise
}

// AlphaExercise is a single exercise within a session.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []AlphaSet
}

// AlphaSet is a single set, working or warmup.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// WorkingSets returns the non-warmup sets in export order.
func (e AlphaExercise) WorkingSets() []AlphaSet {
	var out []AlphaSet
	for _, s := range e.Sets {
		if !s.IsWarmup {
			out = append(out, s)
		}
	}
	return out
}
