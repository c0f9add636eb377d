package program

import (
	"errors"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestDecodeMigratesLegacyNames verifies the one-time migration of sessions
// stored as plain exercise names, mixed with the current object form.
func TestDecodeMigratesLegacyNames(t *testing.T) {
	blob := `{
		"Push": ["Bench", "Dips"],
		"Pull": [{"name": "Row", "sets": 4, "muscle": "Back"}, {"name": "Curl", "sets": "2"}],
		"Legs": []
	}`
	got, err := Decode([]byte(blob))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := models.Program{Sessions: []models.ProgramSession{
		{Name: "Push", Exercises: []models.ExerciseDefinition{{Name: "Bench", PlannedSets: 3}, {Name: "Dips", PlannedSets: 3}}},
		{Name: "Pull", Exercises: []models.ExerciseDefinition{{Name: "Row", PlannedSets: 4, MuscleGroup: "Back"}, {Name: "Curl", PlannedSets: 2}}},
		{Name: "Legs", Exercises: []models.ExerciseDefinition{}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeKeepsSessionOrder verifies blob key order is the program order,
// not alphabetical.
func TestDecodeKeepsSessionOrder(t *testing.T) {
	got, err := Decode([]byte(`{"Zeta": [], "Alpha": [], "Mid": []}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff([]string{"Zeta", "Alpha", "Mid"}, got.SessionNames()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

// TestDecodeEmptyAndInvalid covers empty blobs and garbage.
func TestDecodeEmptyAndInvalid(t *testing.T) {
	for _, blob := range []string{"", "  ", "null", "{}"} {
		p, err := Decode([]byte(blob))
		if err != nil {
			t.Errorf("Decode(%q) error: %v", blob, err)
		}
		if len(p.Sessions) != 0 {
			t.Errorf("Decode(%q) sessions = %d, want 0", blob, len(p.Sessions))
		}
	}
	p, err := Decode([]byte(`{"Push": `))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("truncated blob err = %v, want ErrMalformed", err)
	}
	if len(p.Sessions) != 0 {
		t.Errorf("truncated blob sessions = %d, want 0", len(p.Sessions))
	}
}

// TestDecodeDegradesMalformed verifies a partly unreadable blob still
// yields its readable sessions and exercises, flagged with ErrMalformed.
func TestDecodeDegradesMalformed(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want models.Program
	}{
		{
			name: "session not a list",
			blob: `{"Push": "Bench", "Pull": ["Row"]}`,
			want: models.Program{Sessions: []models.ProgramSession{
				{Name: "Push", Exercises: []models.ExerciseDefinition{}},
				{Name: "Pull", Exercises: []models.ExerciseDefinition{{Name: "Row", PlannedSets: 3}}},
			}},
		},
		{
			name: "exercise name not a string",
			blob: `{"Push": [{"name": 5, "sets": 3}, "Dips", 7]}`,
			want: models.Program{Sessions: []models.ProgramSession{
				{Name: "Push", Exercises: []models.ExerciseDefinition{{Name: "Dips", PlannedSets: 3}}},
			}},
		},
		{
			name: "not json",
			blob: `not json`,
			want: models.Program{},
		},
		{
			name: "top level array",
			blob: `["Push"]`,
			want: models.Program{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.blob))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode err = %v, want ErrMalformed", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecodeClampsSets verifies out-of-range and malformed set counts.
func TestDecodeClampsSets(t *testing.T) {
	p, err := Decode([]byte(`{"S": [{"name": "A", "sets": 40}, {"name": "B", "sets": "x"}, {"name": "C", "sets": 0}, {"name": ""}]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ex := p.Sessions[0].Exercises
	if len(ex) != 3 {
		t.Fatalf("exercises = %d, want 3 (nameless dropped)", len(ex))
	}
	if ex[0].PlannedSets != 15 || ex[1].PlannedSets != 3 || ex[2].PlannedSets != 1 {
		t.Errorf("planned sets = %d/%d/%d, want 15/3/1", ex[0].PlannedSets, ex[1].PlannedSets, ex[2].PlannedSets)
	}
}

// TestEncodeDecode verifies the blob keeps order and fields.
func TestEncodeDecode(t *testing.T) {
	p := models.Program{Sessions: []models.ProgramSession{
		{Name: "Push", Exercises: []models.ExerciseDefinition{{Name: "Bench", PlannedSets: 4, MuscleGroup: "Chest"}}},
		{Name: "Arms", Exercises: []models.ExerciseDefinition{}},
	}}
	data, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := `{"Push":[{"name":"Bench","sets":4,"muscle":"Chest"}],"Arms":[]}`; string(data) != want {
		t.Errorf("Encode = %s, want %s", data, want)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestEditSessions covers add, duplicate, move and remove of sessions.
func TestEditSessions(t *testing.T) {
	p, err := AddSession(models.Program{}, "Push")
	if err != nil {
		t.Fatal(err)
	}
	p, _ = AddSession(p, "Pull")
	p, _ = AddSession(p, "Legs")

	if _, err := AddSession(p, "Pull"); !errors.Is(err, ErrSessionExists) {
		t.Errorf("duplicate AddSession err = %v, want ErrSessionExists", err)
	}
	if _, err := AddSession(p, "  "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank AddSession err = %v, want ErrEmptyName", err)
	}

	moved, err := MoveSession(p, "Legs", -1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Push", "Legs", "Pull"}, moved.SessionNames()); diff != "" {
		t.Errorf("MoveSession mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Push", "Pull", "Legs"}, p.SessionNames()); diff != "" {
		t.Errorf("original program modified (-want +got):\n%s", diff)
	}
	top, _ := MoveSession(p, "Push", -1)
	if top.Sessions[0].Name != "Push" {
		t.Error("moving the first session up should be a no-op")
	}

	removed, err := RemoveSession(p, "Pull")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Push", "Legs"}, removed.SessionNames()); diff != "" {
		t.Errorf("RemoveSession mismatch (-want +got):\n%s", diff)
	}
	if _, err := RemoveSession(p, "Nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("RemoveSession(Nope) err = %v", err)
	}
}

// TestEditExercises covers add, update, move and remove of exercises.
func TestEditExercises(t *testing.T) {
	p, _ := AddSession(models.Program{}, "Push")
	p, err := AddExercise(p, "Push", models.ExerciseDefinition{Name: "Bench"})
	if err != nil {
		t.Fatal(err)
	}
	p, _ = AddExercise(p, "Push", models.ExerciseDefinition{Name: "Dips", PlannedSets: 20, MuscleGroup: " Chest "})

	ex := p.Sessions[0].Exercises
	if ex[0].PlannedSets != 3 || ex[1].PlannedSets != 15 || ex[1].MuscleGroup != "Chest" {
		t.Errorf("added exercises = %+v", ex)
	}
	if _, err := AddExercise(p, "Legs", models.ExerciseDefinition{Name: "Squat"}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AddExercise to missing session err = %v", err)
	}

	sets, muscle := 5, "Pecs"
	p, err = UpdateExercise(p, "Push", 0, ExerciseUpdate{PlannedSets: &sets, MuscleGroup: &muscle})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Sessions[0].Exercises[0]; got.PlannedSets != 5 || got.MuscleGroup != "Pecs" {
		t.Errorf("updated = %+v", got)
	}
	if _, err := UpdateExercise(p, "Push", 2, ExerciseUpdate{}); !errors.Is(err, ErrExerciseIndex) {
		t.Errorf("UpdateExercise(2) err = %v, want ErrExerciseIndex", err)
	}

	p, _ = MoveExercise(p, "Push", 1, -1)
	if p.Sessions[0].Exercises[0].Name != "Dips" {
		t.Errorf("after move first = %q, want Dips", p.Sessions[0].Exercises[0].Name)
	}

	p, err = RemoveExercise(p, "Push", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Sessions[0].Exercises) != 1 || p.Sessions[0].Exercises[0].Name != "Bench" {
		t.Errorf("after remove = %+v", p.Sessions[0].Exercises)
	}
}

// TestTemplate verifies planned rows are pre-filled from logged sets.
func TestTemplate(t *testing.T) {
	key := models.SessionKey{Cycle: 1, Week: 2, Session: "Push", Exercise: "Bench (Barre)"}
	def := models.ExerciseDefinition{Name: "Bench", PlannedSets: 3, MuscleGroup: "Chest"}
	current := []models.WorkoutSet{
		{SetIndex: 2, Weight: 60, Reps: 8, Note: "easy"},
		{SetIndex: 5, Weight: 60, Reps: 8},
	}
	rows := Template(key, def, current)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Weight != 0 || rows[0].SetIndex != 1 || rows[0].Exercise != "Bench (Barre)" || rows[0].MuscleGroup != "Chest" {
		t.Errorf("row 1 = %+v", rows[0])
	}
	if rows[1].Weight != 60 || rows[1].Reps != 8 || rows[1].Note != "easy" {
		t.Errorf("row 2 = %+v", rows[1])
	}
}
