package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestReadCSVLegacyColumns verifies that older tables without the Muscle and
// Date columns still load, with bad cells coerced instead of failing.
func TestReadCSVLegacyColumns(t *testing.T) {
	in := "Cycle,Semaine,Séance,Exercice,Série,Reps,Poids,Remarque\n" +
		"1,1,Push,Bench,1,8,60,\n" +
		",abc,Push,Bench,2,x,\"62,5\",\n" +
		"2,10,Push,Bench,1,5,,SKIP 🚫\n" +
		"1,1,Push,,1,8,60,\n"

	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []models.WorkoutSet{
		{Cycle: 1, Week: 1, Session: "Push", Exercise: "Bench", SetIndex: 1, Reps: 8, Weight: 60},
		{Cycle: 1, Week: 1, Session: "Push", Exercise: "Bench", SetIndex: 2, Reps: 0, Weight: 62.5},
		{Cycle: 2, Week: 0, Session: "Push", Exercise: "Bench", SetIndex: 1, Reps: 5, Weight: 0, Note: models.NoteSkipped},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

// TestReadCSVSemicolon verifies semicolon-separated spreadsheet exports.
func TestReadCSVSemicolon(t *testing.T) {
	in := "\ufeffExercice;Poids;Reps;Muscle\nSquat;100,5;5;Legs\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	s := got[0]
	if s.Exercise != "Squat" || s.Weight != 100.5 || s.Reps != 5 || s.MuscleGroup != "Legs" {
		t.Errorf("row = %+v", s)
	}
	if s.Cycle != 1 || s.Week != 1 || s.SetIndex != 1 {
		t.Errorf("defaults = cycle %d week %d set %d, want 1/1/1", s.Cycle, s.Week, s.SetIndex)
	}
}

// TestWriteThenRead verifies the canonical header survives a save/load cycle.
func TestWriteThenRead(t *testing.T) {
	sets := []models.WorkoutSet{
		{Cycle: 3, Week: 0, Session: "Legs", Exercise: "Squat (Barre)", SetIndex: 2, Reps: 5, Weight: 102.5,
			Note: "dur", MuscleGroup: "Legs", Date: "2026-02-19"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sets); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Cycle,Semaine,Séance,Exercice,Série,Reps,Poids,Remarque,Muscle,Date\n") {
		t.Errorf("header = %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff(sets, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestReadCSVEmpty verifies an empty table loads as an empty log.
func TestReadCSVEmpty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rows = %d, want 0", len(got))
	}
}
