// Package program reads, migrates and edits the training program: the
// ordered sessions and their planned exercises.
package program

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/models"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Planned set bounds accepted when editing a program.
const (
	MinPlannedSets = 1
	MaxPlannedSets = 15
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrExerciseIndex   = errors.New("exercise index out of range")
	ErrEmptyName       = errors.New("name is required")

	// ErrMalformed marks a blob that was only partly readable. Decode still
	// returns whatever it could read alongside it.
	ErrMalformed = errors.New("malformed program")
)

// storedExercise is the blob shape of one exercise definition.
type storedExercise struct {
	Name   string `json:"name"`
	Sets   any    `json:"sets"`
	Muscle string `json:"muscle,omitempty"`
}

// Decode parses the serialized program blob. Session order follows the
// blob's key order. Legacy sessions stored as plain exercise names are
// migrated to definitions with the default planned set count. An empty blob
// is an empty program.
//
// Decode never gives up on a bad blob: unreadable exercises are dropped, a
// session that is not a list keeps no exercises, and a blob that is not a
// JSON object is an empty program. Anything dropped is reported through an
// error wrapping ErrMalformed.
func Decode(data []byte) (models.Program, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return models.Program{}, nil
	}

	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return models.Program{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		p        models.Program
		problems []string
	)
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		session := models.ProgramSession{Name: pair.Key, Exercises: []models.ExerciseDefinition{}}
		var entries []json.RawMessage
		if err := json.Unmarshal(pair.Value, &entries); err != nil {
			problems = append(problems, fmt.Sprintf("session %q is not a list", pair.Key))
		}
		for _, raw := range entries {
			def, ok := decodeExercise(raw)
			if !ok {
				problems = append(problems, fmt.Sprintf("session %q: unreadable exercise %s", pair.Key, bytes.TrimSpace(raw)))
				continue
			}
			if def.Name == "" {
				continue
			}
			session.Exercises = append(session.Exercises, def)
		}
		p.Sessions = append(p.Sessions, session)
	}
	if len(problems) > 0 {
		return p, fmt.Errorf("%w: %s", ErrMalformed, strings.Join(problems, "; "))
	}
	return p, nil
}

// decodeExercise reads either a legacy bare name or an object. Anything
// without a string name is unreadable.
func decodeExercise(raw json.RawMessage) (models.ExerciseDefinition, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.ExerciseDefinition{}, false
	}
	switch e := v.(type) {
	case string:
		return models.ExerciseDefinition{Name: strings.TrimSpace(e), PlannedSets: models.DefaultPlannedSets}, true
	case map[string]any:
		name, ok := e["name"].(string)
		if !ok {
			return models.ExerciseDefinition{}, false
		}
		return models.ExerciseDefinition{
			Name:        strings.TrimSpace(name),
			PlannedSets: clampSets(coerce.Int(e["sets"], models.DefaultPlannedSets)),
			MuscleGroup: coerce.Text(e["muscle"]),
		}, true
	}
	return models.ExerciseDefinition{}, false
}

// Encode serializes the program into the blob shape, preserving order.
func Encode(p models.Program) ([]byte, error) {
	om := orderedmap.New[string, []storedExercise]()
	for _, s := range p.Sessions {
		exercises := make([]storedExercise, 0, len(s.Exercises))
		for _, e := range s.Exercises {
			exercises = append(exercises, storedExercise{Name: e.Name, Sets: e.PlannedSets, Muscle: e.MuscleGroup})
		}
		om.Set(s.Name, exercises)
	}
	data, err := json.Marshal(om)
	if err != nil {
		return nil, fmt.Errorf("encoding program: %w", err)
	}
	return data, nil
}

func clampSets(n int) int {
	return min(max(n, MinPlannedSets), MaxPlannedSets)
}
