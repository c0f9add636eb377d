// Package alpha reads Alpha Progression CSV exports and turns them into
// workout log batches.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/coerce"
	"github.com/claude/liftlog/internal/models"
)

var (
	// "Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Exercise · Equipment · 8 reps[· modifiers]"[;"warmups"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setRowRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	// WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	weekRe = regexp.MustCompile(`(?i)^(?:week|semaine)\s+(\d+)$`)
)

const columnHeader = "#;KG;REPS;RIR"

// parser accumulates sessions line by line.
type parser struct {
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
}

func (p *parser) flushExercise() {
	if p.exercise != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
		p.exercise = nil
	}
}

func (p *parser) flushSession() {
	if p.session == nil {
		return
	}
	p.flushExercise()
	p.sessions = append(p.sessions, *p.session)
	p.session = nil
}

func (p *parser) line(line string) error {
	switch {
	case line == "":
		p.flushSession()
	case line == columnHeader:
	case sessionHeaderRe.MatchString(line):
		m := sessionHeaderRe.FindStringSubmatch(line)
		p.flushSession()
		date, err := parseSessionDate(m[2])
		if err != nil {
			return fmt.Errorf("parsing session date %q: %w", m[2], err)
		}
		session, week := SplitSessionName(m[1])
		p.session = &models.AlphaSession{Name: m[1], Session: session, Week: week, Date: date, Duration: m[3]}
	case exerciseHeaderRe.MatchString(line):
		if p.session == nil {
			return fmt.Errorf("exercise without session: %q", line)
		}
		m := exerciseHeaderRe.FindStringSubmatch(line)
		p.flushExercise()
		num, _ := strconv.Atoi(m[1])
		target, _ := strconv.Atoi(m[4])
		p.exercise = &models.AlphaExercise{
			Number:     num,
			Name:       strings.TrimSpace(m[2]),
			Equipment:  strings.TrimSpace(m[3]),
			TargetReps: target,
			Sets:       parseWarmups(m[6]),
		}
	case setRowRe.MatchString(line):
		if p.exercise == nil {
			return fmt.Errorf("set data without exercise: %q", line)
		}
		m := setRowRe.FindStringSubmatch(line)
		num, _ := strconv.Atoi(m[1])
		reps, _ := strconv.Atoi(m[3])
		weight, bw := parseWeight(m[2])
		p.exercise.Sets = append(p.exercise.Sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			RIR:              coerce.Float(m[4]),
		})
	}
	// Anything else is free-form metadata.
	return nil
}

// Parse reads an Alpha Progression CSV export.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	var p parser
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := p.line(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.flushSession()
	return p.sessions, nil
}

// SplitSessionName extracts the program session and user-facing week from a
// header like "Legs · Day 2 · Week 4 · Push-Pull-Legs". Without a week part
// the week is 1.
func SplitSessionName(name string) (session string, week int) {
	parts := strings.Split(name, "·")
	session = strings.TrimSpace(parts[0])
	week = 1
	for _, part := range parts[1:] {
		if m := weekRe.FindStringSubmatch(strings.TrimSpace(part)); m != nil {
			week, _ = strconv.Atoi(m[1])
		}
	}
	return session, week
}

func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) []models.AlphaSet {
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		reps, _ := strconv.Atoi(m[3])
		weight, bw := parseWeight(m[2])
		sets = append(sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			IsWarmup:         true,
		})
	}
	return sets
}

// parseWeight handles "+35" (bodyweight plus 35) and European decimals.
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return coerce.Float(rest), true
	}
	return coerce.Float(s), false
}
