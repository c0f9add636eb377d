package models

import (
	"fmt"
	"strings"
)

// Sentinel notes written in place of performed sets.
const (
	NoteSkipped = "SKIP 🚫"
	NoteMissed  = "Loupée ❌"
)

// DeloadWeek is the week number users enter for the last week of a cycle.
// It is stored as week 0 so the week column stays a single cyclic digit.
const DeloadWeek = 10

// WorkoutSet is one row of the history table.
type WorkoutSet struct {
	Cycle       int     `json:"cycle"`
	Week        int     `json:"week"`
	Session     string  `json:"session"`
	Exercise    string  `json:"exercise"`
	SetIndex    int     `json:"set_index"`
	Reps        int     `json:"reps"`
	Weight      float64 `json:"weight"`
	Note        string  `json:"note,omitempty"`
	MuscleGroup string  `json:"muscle_group,omitempty"`
	Date        string  `json:"date,omitempty"`
}

// Performed reports whether the set carries any work. Unperformed rows are
// placeholders (skips, missed sessions) and never count as records.
func (s WorkoutSet) Performed() bool {
	return s.Weight > 0 || s.Reps > 0
}

// Key returns the reconciliation key the set belongs to.
func (s WorkoutSet) Key() SessionKey {
	return SessionKey{Cycle: s.Cycle, Week: s.Week, Session: s.Session, Exercise: s.Exercise}
}

// Period returns the (cycle, week) the set was logged in.
func (s WorkoutSet) Period() Period {
	return Period{Cycle: s.Cycle, Week: s.Week}
}

// SessionKey identifies one exercise batch within a session of a given week.
type SessionKey struct {
	Cycle    int    `json:"cycle"`
	Week     int    `json:"week"`
	Session  string `json:"session"`
	Exercise string `json:"exercise"`
}

// Matches reports whether the set is stored under this key.
func (k SessionKey) Matches(s WorkoutSet) bool {
	return s.Cycle == k.Cycle && s.Week == k.Week && s.Session == k.Session && s.Exercise == k.Exercise
}

func (k SessionKey) String() string {
	return fmt.Sprintf("C%d-S%d/%s/%s", k.Cycle, k.Week, k.Session, k.Exercise)
}

// Period is a (cycle, week) training slot.
type Period struct {
	Cycle int `json:"cycle"`
	Week  int `json:"week"`
}

// Before reports whether p is strictly older than o.
func (p Period) Before(o Period) bool {
	return p.Cycle < o.Cycle || (p.Cycle == o.Cycle && p.Week < o.Week)
}

// Label renders the period the way the progress chart labels its points.
func (p Period) Label() string {
	return fmt.Sprintf("C%d-S%d", p.Cycle, p.Week)
}

// WeekToStorage maps a user-entered week to its stored value (10 -> 0).
func WeekToStorage(week int) int {
	if week == DeloadWeek {
		return 0
	}
	return week
}

// WeekFromStorage maps a stored week back to what the user entered (0 -> 10).
func WeekFromStorage(week int) int {
	if week == 0 {
		return DeloadWeek
	}
	return week
}

// ValidStoredWeek reports whether w can be stored: 0 (deload) through 9.
func ValidStoredWeek(w int) bool {
	return w >= 0 && w < DeloadWeek
}

// IsSentinel reports whether a note marks a skipped or missed exercise.
func IsSentinel(note string) bool {
	return note == NoteSkipped || note == NoteMissed
}

// Variants lists the equipment variants offered when logging an exercise.
var Variants = []string{"Standard", "Barre", "Haltères", "Poulie", "Machine", "Lesté"}

// WithVariant builds the stored exercise name, e.g. "Bench Press (Barre)".
// The standard variant keeps the bare name.
func WithVariant(base, variant string) string {
	variant = strings.TrimSpace(variant)
	if variant == "" || strings.EqualFold(variant, "Standard") {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, variant)
}

// BaseExercise strips a trailing parenthesized variant from an exercise name.
func BaseExercise(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ")") {
		return name
	}
	open := strings.LastIndex(name, "(")
	if open <= 0 {
		return name
	}
	return strings.TrimSpace(name[:open])
}
