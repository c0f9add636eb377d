package models

import "testing"

// TestBaseExercise verifies that the equipment variant suffix is stripped.
func TestBaseExercise(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bench Press (Barbell)", "Bench Press"},
		{"Bench Press", "Bench Press"},
		{"Curl (Haltères)", "Curl"},
		{"  Squat (Machine)  ", "Squat"},
		{"(Odd)", "(Odd)"},
		{"Dips (Lesté) (Poulie)", "Dips (Lesté)"},
	}
	for _, tt := range tests {
		if got := BaseExercise(tt.in); got != tt.want {
			t.Errorf("BaseExercise(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestWithVariant verifies that the standard variant keeps the bare name.
func TestWithVariant(t *testing.T) {
	if got := WithVariant("Bench", "Standard"); got != "Bench" {
		t.Errorf("WithVariant(Standard) = %q, want Bench", got)
	}
	if got := WithVariant("Bench", ""); got != "Bench" {
		t.Errorf("WithVariant(empty) = %q, want Bench", got)
	}
	if got := WithVariant("Bench", "Barre"); got != "Bench (Barre)" {
		t.Errorf("WithVariant(Barre) = %q, want %q", got, "Bench (Barre)")
	}
	if got := BaseExercise(WithVariant("Bench", "Poulie")); got != "Bench" {
		t.Errorf("round trip = %q, want Bench", got)
	}
}

// TestWeekAlias verifies the deload week is stored as 0 and read back as 10.
func TestWeekAlias(t *testing.T) {
	if got := WeekToStorage(10); got != 0 {
		t.Errorf("WeekToStorage(10) = %d, want 0", got)
	}
	if got := WeekToStorage(4); got != 4 {
		t.Errorf("WeekToStorage(4) = %d, want 4", got)
	}
	if got := WeekFromStorage(0); got != 10 {
		t.Errorf("WeekFromStorage(0) = %d, want 10", got)
	}
}

// TestPeriodBefore covers the strictly-older ordering used for history.
func TestPeriodBefore(t *testing.T) {
	target := Period{Cycle: 2, Week: 3}
	older := []Period{{1, 5}, {2, 1}, {2, 2}, {1, 9}}
	for _, p := range older {
		if !p.Before(target) {
			t.Errorf("%v.Before(%v) = false, want true", p, target)
		}
	}
	notOlder := []Period{{2, 3}, {2, 4}, {3, 0}}
	for _, p := range notOlder {
		if p.Before(target) {
			t.Errorf("%v.Before(%v) = true, want false", p, target)
		}
	}
}

// TestProgramMuscleGroupOf verifies resolution through the base exercise name.
func TestProgramMuscleGroupOf(t *testing.T) {
	p := Program{Sessions: []ProgramSession{
		{Name: "Push", Exercises: []ExerciseDefinition{{Name: "Bench", PlannedSets: 3, MuscleGroup: "Chest"}}},
		{Name: "Legs", Exercises: []ExerciseDefinition{{Name: "Squat", PlannedSets: 4, MuscleGroup: "Legs"}}},
	}}
	if got := p.MuscleGroupOf("Bench (Barre)"); got != "Chest" {
		t.Errorf("MuscleGroupOf(Bench (Barre)) = %q, want Chest", got)
	}
	if got := p.MuscleGroupOf("Row"); got != "" {
		t.Errorf("MuscleGroupOf(Row) = %q, want empty", got)
	}

	c := p.Clone()
	c.Sessions[0].Exercises[0].Name = "Changed"
	if p.Sessions[0].Exercises[0].Name != "Bench" {
		t.Error("Clone aliases the original exercises")
	}
}
