package models

import "slices"

// DefaultPlannedSets is used for exercises whose definition predates set counts.
const DefaultPlannedSets = 3

// ExerciseDefinition is one planned exercise of a program session.
type ExerciseDefinition struct {
	Name        string `json:"name"`
	PlannedSets int    `json:"sets"`
	MuscleGroup string `json:"muscle,omitempty"`
}

// ProgramSession is a named training day with its ordered exercises.
type ProgramSession struct {
	Name      string               `json:"name"`
	Exercises []ExerciseDefinition `json:"exercises"`
}

// Program is the ordered list of sessions the user trains.
type Program struct {
	Sessions []ProgramSession `json:"sessions"`
}

// Session returns the named session and whether it exists.
func (p Program) Session(name string) (ProgramSession, bool) {
	for _, s := range p.Sessions {
		if s.Name == name {
			return s, true
		}
	}
	return ProgramSession{}, false
}

// SessionNames returns session names in program order.
func (p Program) SessionNames() []string {
	names := make([]string, 0, len(p.Sessions))
	for _, s := range p.Sessions {
		names = append(names, s.Name)
	}
	return names
}

// MuscleGroupOf resolves the muscle group of an exercise by its base name.
// The first definition found in program order wins.
func (p Program) MuscleGroupOf(exercise string) string {
	base := BaseExercise(exercise)
	for _, s := range p.Sessions {
		for _, e := range s.Exercises {
			if e.Name == base && e.MuscleGroup != "" {
				return e.MuscleGroup
			}
		}
	}
	return ""
}

// Clone returns a deep copy so edits never alias a loaded program.
func (p Program) Clone() Program {
	if p.Sessions == nil {
		return Program{}
	}
	out := Program{Sessions: make([]ProgramSession, len(p.Sessions))}
	for i, s := range p.Sessions {
		out.Sessions[i] = ProgramSession{Name: s.Name, Exercises: slices.Clone(s.Exercises)}
	}
	return out
}
