// Package sheet maps the history table between header-named cells and
// typed workout sets.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/models"
)

// Column headers of the history table, in storage order.
const (
	ColCycle    = "Cycle"
	ColWeek     = "Semaine"
	ColSession  = "Séance"
	ColExercise = "Exercice"
	ColSet      = "Série"
	ColReps     = "Reps"
	ColWeight   = "Poids"
	ColNote     = "Remarque"
	ColMuscle   = "Muscle"
	ColDate     = "Date"
)

// Header is the canonical column order written on every save.
var Header = []string{
	ColCycle, ColWeek, ColSession, ColExercise, ColSet,
	ColReps, ColWeight, ColNote, ColMuscle, ColDate,
}

// Record is one row keyed by column header. Values are whatever the source
// produced: strings from CSV/SQL, numbers from JSON.
type Record map[string]any

// Decode converts raw records into workout sets. Missing columns and bad
// cells fall back to the coercion defaults; rows without an exercise name
// are dropped since they cannot belong to any key.
func Decode(records []Record) []models.WorkoutSet {
	sets := make([]models.WorkoutSet, 0, len(records))
	for _, r := range records {
		s := models.WorkoutSet{
			Cycle:       coerce.Cycle(r[ColCycle]),
			Week:        coerce.Week(r[ColWeek]),
			Session:     coerce.Text(r[ColSession]),
			Exercise:    coerce.Text(r[ColExercise]),
			SetIndex:    coerce.SetIndex(r[ColSet]),
			Reps:        coerce.Reps(r[ColReps]),
			Weight:      coerce.Weight(r[ColWeight]),
			Note:        coerce.Text(r[ColNote]),
			MuscleGroup: coerce.Text(r[ColMuscle]),
			Date:        coerce.Text(r[ColDate]),
		}
		if s.Exercise == "" {
			continue
		}
		sets = append(sets, s)
	}
	return sets
}

// Records builds header-keyed records from a positional table.
// Cells beyond the header are ignored; short rows leave columns missing.
func Records(header []string, rows [][]string) []Record {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r := make(Record, len(cols))
		for i, col := range cols {
			if i < len(row) {
				r[col] = row[i]
			}
		}
		out = append(out, r)
	}
	return out
}

// Row renders a set as cells in Header order.
func Row(s models.WorkoutSet) []string {
	return []string{
		strconv.Itoa(s.Cycle),
		strconv.Itoa(s.Week),
		s.Session,
		s.Exercise,
		strconv.Itoa(s.SetIndex),
		strconv.Itoa(s.Reps),
		strconv.FormatFloat(s.Weight, 'f', -1, 64),
		s.Note,
		s.MuscleGroup,
		s.Date,
	}
}

// Rows renders every set in Header order.
func Rows(sets []models.WorkoutSet) [][]string {
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, Row(s))
	}
	return rows
}

// ReadCSV parses a history table whose first line is the header row.
// Both comma and semicolon separated exports are accepted.
func ReadCSV(r io.Reader) ([]models.WorkoutSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading history csv: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.FieldsPerRecord = -1
	cr.Comma = detectComma(string(data))
	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing history csv: %w", err)
	}
	return Decode(Records(table[0], table[1:])), nil
}

// WriteCSV writes the full history table, header first.
func WriteCSV(w io.Writer, sets []models.WorkoutSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing history header: %w", err)
	}
	if err := cw.WriteAll(Rows(sets)); err != nil {
		return fmt.Errorf("writing history rows: %w", err)
	}
	return nil
}

func detectComma(data string) rune {
	first, _, _ := strings.Cut(data, "\n")
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}
